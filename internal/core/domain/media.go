package domain

import (
	"errors"
	"time"
)

var ErrMediaNotFound = errors.New("media not found")

// Media is an uploaded file's metadata. ProductID is empty until the media is
// attached to a product; uploads may exist unattached indefinitely. OwnerID is
// fixed at upload time.
type Media struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	ProductID        string    `json:"product_id,omitempty"`
	OriginalFilename string    `json:"original_filename"`
	FilePath         string    `json:"file_path"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
