package event

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"eventkeeper/internal/app/server/api/http/middleware/auth"
	"eventkeeper/internal/domain/event"
)

type Handler struct {
	service    event.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service event.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "event_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	events, err := h.service.List(ctx, userID)
	if err != nil {
		return nil, h.mapError("list", err)
	}
	return &listOutput{Body: event.ListResponse{Status: event.StatusOk, Events: events}}, nil
}

func (h *Handler) find(ctx context.Context, input *findInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	e, err := h.service.Find(ctx, userID, input.ID)
	if err != nil {
		return nil, h.mapError("find", err)
	}
	return single(e), nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	e, err := h.service.Create(ctx, userID, input.Body.Event(""))
	if err != nil {
		return nil, h.mapError("create", err)
	}
	return single(e), nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	e, err := h.service.Update(ctx, userID, input.ID, input.Body.Event(input.ID))
	if err != nil {
		return nil, h.mapError("update", err)
	}
	return single(e), nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.Delete(ctx, userID, input.ID); err != nil {
		return nil, h.mapError("delete", err)
	}
	return &output{Body: event.Response{Status: event.StatusOk}}, nil
}

func single(e event.Event) *output {
	return &output{Body: event.Response{Status: event.StatusOk, Event: &e}}
}

func (h *Handler) mapError(op string, err error) error {
	switch {
	case errors.Is(err, event.ErrNotFound):
		return huma.Error404NotFound("event not found")
	case errors.Is(err, event.ErrInvalidData):
		return huma.Error422UnprocessableEntity(err.Error())
	default:
		h.log.Error("event operation failed", "op", op, "error", err)
		return huma.Error500InternalServerError(op + " failed")
	}
}
