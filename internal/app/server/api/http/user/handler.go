package user

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"eventkeeper/internal/domain/session"
	"eventkeeper/internal/domain/user"
)

type Handler struct {
	service    user.Servicer
	session    session.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service user.Servicer, session session.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		session:    session,
		log:        log.With("component", "auth_handler"),
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
}

// Domain failures are reported in the body with status "Error";
// only unexpected failures become 5xx.
func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	userID, err := h.service.Register(ctx, input.Body.Login, input.Body.Password)
	switch {
	case errors.Is(err, user.ErrInvalidInput), errors.Is(err, user.ErrLoginTaken):
		return &registerOutput{Body: RegisterResponse{Status: statusError, Error: err.Error()}}, nil
	case err != nil:
		h.log.Error("register failed", "error", err)
		return nil, huma.Error500InternalServerError("register failed")
	}

	return &registerOutput{Body: RegisterResponse{ID: userID, Status: statusOk}}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Login, input.Body.Password)
	if errors.Is(err, user.ErrInvalidAuth) {
		return &loginOutput{Body: LoginResponse{Status: statusError, Error: "invalid credentials"}}, nil
	}
	if err != nil {
		h.log.Error("authenticate failed", "error", err)
		return nil, huma.Error500InternalServerError("login failed")
	}

	token, err := h.session.Create(ctx, u.ID)
	if err != nil {
		h.log.Error("create session failed", "user_id", u.ID, "error", err)
		return nil, huma.Error500InternalServerError("login failed")
	}

	return &loginOutput{Body: LoginResponse{Token: token, Status: statusOk}}, nil
}
