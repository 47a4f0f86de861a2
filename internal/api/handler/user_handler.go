package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/buy01/marketplace-system/internal/core/ports"
)

type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type updateProfileRequest struct {
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	Password    string `json:"password"`
	NewPassword string `json:"new_password" validate:"omitempty,min=8"`
}

// Me returns the authenticated user's profile.
//
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /v1/users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetByID returns a user's public profile.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id} [get]
func (h *UserHandler) GetByID(c echo.Context) error {
	user, err := h.users.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe mutates the authenticated user's profile.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile changes"
// @Success      200   {object}  domain.User
// @Failure      401   {object}  errorResponse
// @Router       /v1/users/me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	userID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), userID, ports.UpdateProfileInput{
		Name:        req.Name,
		Avatar:      req.Avatar,
		Password:    req.Password,
		NewPassword: req.NewPassword,
	}, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteMe deletes the authenticated user's account. The response reports the
// local deletion only; dependent products and media disappear asynchronously
// once the cascade completes.
//
// @Summary      Delete own account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	userID, _, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.users.DeleteAccount(c.Request().Context(), userID, userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
