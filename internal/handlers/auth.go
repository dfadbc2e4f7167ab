package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avelorn/storefront/internal/logging"
	authmw "github.com/avelorn/storefront/internal/middleware/auth"
	"github.com/avelorn/storefront/internal/service/auth"
	"github.com/avelorn/storefront/internal/transport"
)

type AuthHandler struct {
	Svc *auth.AuthService
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.Svc.Register(c.Request().Context(), req.Name, req.Email, req.Password); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully."})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, user, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.LoginResponse{
		Token: token,
		User:  transport.ProfileFromUser(user),
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	user, err := h.Svc.Me(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": transport.ProfileFromUser(user)})
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.Svc.ChangePassword(c.Request().Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully."})
}

// ForgotPassword answers the same way whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req transport.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.Svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		logging.FromContext(c.Request().Context()).Error("forgot password failed", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "If that email exists, a reset link has been sent."})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req transport.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.Svc.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successful."})
}
