package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"stayin/model"
	authsvc "stayin/service/auth"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (ct *Controller) bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}
	return nil
}

// Register a new user
// @Summary      Register user
// @Description  Register a new user, email must be unique
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email already registered"
// @Failure      500  {object}  map[string]any
// @Router       /v1/auth/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := ct.bindAndValidate(c, &req); err != nil {
		return err
	}

	u, token, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailTaken):
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
		case errors.Is(err, authsvc.ErrPasswordMismatch):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "passwords do not match"})
		case errors.Is(err, authsvc.ErrBadInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("register failed", "err", err, "req_id", rid, "path", c.Path())
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "register failed"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered",
		"token":   token,
		"user":    u,
	})
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /v1/auth/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := ct.bindAndValidate(c, &req); err != nil {
		return err
	}

	u, token, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidCreds):
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
		case errors.Is(err, authsvc.ErrBadInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("login failed", "err", err, "req_id", rid, "path", c.Path())
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "login failed"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login success",
		"token":   token,
		"user":    u,
	})
}

// POST /v1/auth/forgot-password
func (ct *Controller) ForgotPassword(c echo.Context) error {
	var req model.ForgotPasswordReq
	if err := ct.bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := ct.Svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailUnknown):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "email not registered"})
		case errors.Is(err, authsvc.ErrBadInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			ct.Log.Error("forgot password failed", "err", err, "path", c.Path())
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "verification code sent"})
}

// POST /v1/auth/verify-code
func (ct *Controller) VerifyCode(c echo.Context) error {
	var req model.VerifyCodeReq
	if err := ct.bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := ct.Svc.VerifyCode(c.Request().Context(), req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, authsvc.ErrCodeInvalid):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid code"})
		case errors.Is(err, authsvc.ErrCodeExpired):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "code expired, request a new one"})
		case errors.Is(err, authsvc.ErrBadInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			ct.Log.Error("verify code failed", "err", err, "path", c.Path())
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "code verified"})
}

// POST /v1/auth/reset-password
func (ct *Controller) ResetPassword(c echo.Context) error {
	var req model.ResetPasswordReq
	if err := ct.bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := ct.Svc.ResetPassword(c.Request().Context(), req); err != nil {
		switch {
		case errors.Is(err, authsvc.ErrCodeInvalid):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid code"})
		case errors.Is(err, authsvc.ErrCodeExpired):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "code expired, request a new one"})
		case errors.Is(err, authsvc.ErrPasswordMismatch):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "passwords do not match"})
		case errors.Is(err, authsvc.ErrEmailUnknown),
			errors.Is(err, authsvc.ErrBadInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			ct.Log.Error("reset password failed", "err", err, "path", c.Path())
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password changed, you can now log in"})
}
