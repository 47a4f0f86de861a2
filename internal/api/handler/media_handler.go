package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/buy01/marketplace-system/internal/core/ports"
)

type MediaHandler struct {
	media ports.MediaService
}

func NewMediaHandler(media ports.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// mediaUploadRequest carries the metadata of an already-stored file. The byte
// upload itself is handled by the storage boundary before this endpoint runs.
type mediaUploadRequest struct {
	OriginalFilename string `json:"original_filename" validate:"required"`
	FilePath         string `json:"file_path" validate:"required"`
	ContentType      string `json:"content_type" validate:"required"`
	Size             int64  `json:"size" validate:"required,gt=0"`
}

// ListMine returns the authenticated user's media.
//
// @Summary      List own media
// @Tags         media
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Media
// @Router       /v1/media [get]
func (h *MediaHandler) ListMine(c echo.Context) error {
	userID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	medias, err := h.media.FindByOwner(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, medias)
}

// Upload registers media metadata owned by the authenticated user.
//
// @Summary      Register uploaded media
// @Tags         media
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      mediaUploadRequest  true  "Media metadata"
// @Success      201   {object}  domain.Media
// @Router       /v1/media [post]
func (h *MediaHandler) Upload(c echo.Context) error {
	userID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req mediaUploadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	media, err := h.media.CreateMetadata(c.Request().Context(), ports.CreateMediaInput{
		OwnerID:          userID,
		OriginalFilename: req.OriginalFilename,
		FilePath:         req.FilePath,
		ContentType:      req.ContentType,
		Size:             req.Size,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, media)
}

// Associate attaches media the requester owns to a product.
//
// @Summary      Associate media with a product
// @Tags         media
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Media
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/media/{id}/product/{productId} [put]
func (h *MediaHandler) Associate(c echo.Context) error {
	userID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	media, err := h.media.AssociateWithProduct(
		c.Request().Context(), c.Param("id"), c.Param("productId"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, media)
}

// Delete removes media the requester owns.
//
// @Summary      Delete media
// @Tags         media
// @Produce      json
// @Security     BearerAuth
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/media/{id} [delete]
func (h *MediaHandler) Delete(c echo.Context) error {
	userID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.media.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
