package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"accesshub/internal/auth"
	apperrors "accesshub/internal/errors"
	"accesshub/internal/model"
	"accesshub/internal/service"
)

// UserHandler bundles the user-management endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateProfileRequest represents a profile update. Both fields are optional.
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

// ProfileResponse wraps the updated user record.
type ProfileResponse struct {
	User *model.User `json:"user"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// List godoc
// @Summary List all users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		status, msg := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(status, msg)
	}
	return c.JSON(http.StatusOK, users)
}

// Delete godoc
// @Summary Delete a user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		status, msg := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(status, msg)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "user deleted successfully"})
}

// UpdateProfile godoc
// @Summary Update the caller's own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile changes"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrTokenInvalid.Error())
	}

	callerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrTokenInvalid.Error())
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.svc.UpdateProfile(c.Request().Context(), callerID, service.ProfileUpdate{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		status, msg := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(status, msg)
	}

	return c.JSON(http.StatusOK, ProfileResponse{User: user})
}
