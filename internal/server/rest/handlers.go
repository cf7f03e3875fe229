package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// UserService is the subset of services.UserService the handlers call.
type UserService interface {
	Signup(ctx context.Context, username, email, password string) (*models.UserView, error)
	LoginByEmail(ctx context.Context, email, password string) (*services.LoginResult, error)
	LoginByUsername(ctx context.Context, username, password string) (*services.TokenResult, error)
	WhoAmI(ctx context.Context, token string) (*models.UserView, error)
	ListUsers(ctx context.Context) ([]models.UserView, error)
	GetUser(ctx context.Context, id int64) (*models.UserView, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// parseBody decodes the JSON body into v. An unreadable body leaves v zeroed,
// so the request fails field validation instead.
func parseBody(c *fiber.Ctx, v any) {
	_ = c.BodyParser(v)
}

// Signup handles POST /api/signup.
func (h *UserHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	parseBody(c, &req)

	user, err := h.svc.Signup(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		var fe *common.FieldError
		switch {
		case errors.As(err, &fe):
			return Error(c, http.StatusBadRequest, fe.Error())
		case errors.Is(err, common.ErrDuplicateIdentity):
			return Error(c, http.StatusConflict, common.ErrDuplicateIdentity.Error())
		default:
			return Error(c, http.StatusInternalServerError, "internal error")
		}
	}

	return JSON(c, http.StatusCreated, fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// Login handles POST /api/login.
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	parseBody(c, &req)

	res, err := h.svc.LoginByEmail(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMissingField):
			return Error(c, http.StatusBadRequest, "email and password are required")
		case errors.Is(err, common.ErrInvalidCredentials):
			return Error(c, http.StatusUnauthorized, "invalid credentials")
		default:
			return Error(c, http.StatusInternalServerError, "internal error")
		}
	}

	return JSON(c, http.StatusOK, fiber.Map{
		"message": "login ok",
		"token":   res.Token,
		"user":    res.User,
	})
}

// Token handles POST /api/token.
func (h *UserHandler) Token(c *fiber.Ctx) error {
	var req tokenRequest
	parseBody(c, &req)

	res, err := h.svc.LoginByUsername(c.UserContext(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMissingField):
			return Msg(c, http.StatusBadRequest, "username and password are required")
		case errors.Is(err, common.ErrInvalidCredentials):
			return Msg(c, http.StatusUnauthorized, "Bad username or password")
		default:
			return Msg(c, http.StatusInternalServerError, "internal error")
		}
	}

	return JSON(c, http.StatusOK, fiber.Map{
		"token":    res.Token,
		"user_id":  res.UserID,
		"username": res.Username,
	})
}

// Me handles GET /api/me.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return Msg(c, http.StatusUnauthorized, "Missing Authorization Header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, common.BearerPrefix) || token == "" {
		return Msg(c, http.StatusUnauthorized, "Missing 'Bearer' type in 'Authorization' header")
	}

	user, err := h.svc.WhoAmI(c.UserContext(), token)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTokenExpired):
			return Msg(c, http.StatusUnauthorized, "Token has expired")
		case errors.Is(err, common.ErrTokenBadSignature):
			return Msg(c, http.StatusUnauthorized, "Signature verification failed")
		case errors.Is(err, common.ErrInvalidToken):
			return Msg(c, http.StatusUnauthorized, "Invalid token")
		case errors.Is(err, common.ErrorNotFound):
			return Msg(c, http.StatusNotFound, "User not found")
		default:
			return Msg(c, http.StatusInternalServerError, "internal error")
		}
	}

	return JSON(c, http.StatusOK, user)
}

// ListUsers handles GET /api/users.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.svc.ListUsers(c.UserContext())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "internal error")
	}
	return JSON(c, http.StatusOK, users)
}

// GetUser handles GET /api/users/:id. A non-numeric id is reported as a
// missing user.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusNotFound, "User not found")
	}

	user, err := h.svc.GetUser(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return Error(c, http.StatusNotFound, "User not found")
		}
		return Error(c, http.StatusInternalServerError, "internal error")
	}

	return JSON(c, http.StatusOK, user)
}
