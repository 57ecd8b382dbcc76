package controller

import (
	"context"
	"errors"
	"net/http"

	httpdto "github.com/meisaku/ms-go-user/app/dto/http"
	"github.com/meisaku/ms-go-user/app/repository"
	"github.com/meisaku/ms-go-user/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type registrationService interface {
	Register(ctx context.Context, username, email, password, baseURL string) (*service.RegistrationResult, error)
	ActivateEmail(ctx context.Context, userID, token string) error
}

type UserController struct {
	registration registrationService
	baseURL      string
}

func NewUserController(registration registrationService, baseURL string) *UserController {
	return &UserController{
		registration: registration,
		baseURL:      baseURL,
	}
}

func (c *UserController) CreateUser(ctx echo.Context) error {
	var req httpdto.CreateUserRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind create user request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		logrus.WithField("username", req.Username).Debug("Create user validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("username", req.Username).Info("Create user request received")
	result, err := c.registration.Register(ctx.Request().Context(), req.Username, req.Email, req.Password, c.baseURL)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			logrus.WithField("username", req.Username).Warn("Create user failed: username already exists")
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: "username already exists"})
		}
		if errors.Is(err, repository.ErrEmailExists) {
			logrus.WithField("username", req.Username).Warn("Create user failed: email already exists")
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: "email already exists"})
		}
		logrus.WithError(err).WithField("username", req.Username).Error("Create user failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  result.UserID,
		"username": result.Username,
	}).Info("User created")

	return ctx.JSON(http.StatusCreated, httpdto.UserCreatedResponse{
		ID:       result.UserID,
		Username: result.Username,
		Email:    result.Email,
	})
}

func (c *UserController) ActivateEmail(ctx echo.Context) error {
	var req httpdto.ActivateEmailRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind activate email request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request"})
	}

	if err := req.Validate(); err != nil {
		logrus.Debug("Activate email validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("user_id", req.UserID).Info("Activate email request received")
	if err := c.registration.ActivateEmail(ctx.Request().Context(), req.UserID, req.Token); err != nil {
		if errors.Is(err, service.ErrInvalidActivationToken) {
			logrus.WithField("user_id", req.UserID).Warn("Activate email failed: invalid token")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid activation token"})
		}
		logrus.WithError(err).WithField("user_id", req.UserID).Error("Activate email failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", req.UserID).Info("Email activated")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "email activated successfully"})
}
