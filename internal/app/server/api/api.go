// Package api wires the remote authority's HTTP surface:
//
//	GET    /api/v1/health
//	POST   /api/v1/auth/register
//	POST   /api/v1/auth/login
//	GET    /api/v1/events        (auth)
//	POST   /api/v1/events        (auth)
//	GET    /api/v1/events/{id}   (auth)
//	PUT    /api/v1/events/{id}   (auth)
//	DELETE /api/v1/events/{id}   (auth)
package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	eventAPI "eventkeeper/internal/app/server/api/http/event"
	healthAPI "eventkeeper/internal/app/server/api/http/health"
	"eventkeeper/internal/app/server/api/http/middleware"
	"eventkeeper/internal/app/server/api/http/middleware/auth"
	"eventkeeper/internal/app/server/api/http/middleware/logger"
	userAPI "eventkeeper/internal/app/server/api/http/user"
	"eventkeeper/internal/domain/event"
	"eventkeeper/internal/domain/session"
	"eventkeeper/internal/domain/user"
)

// Services are the domain services the handlers delegate to.
type Services struct {
	Users    user.Servicer
	Sessions session.Servicer
	Events   event.Servicer
}

type Handlers struct {
	Health *healthAPI.Handler
	User   *userAPI.Handler
	Event  *eventAPI.Handler
}

// New builds the router with every operation registered through huma.
func New(svc Services, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.RequestID, chimw.Recoverer)

	config := huma.DefaultConfig("EventKeeper API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(svc, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Event.SetupRoutes(API)

	return mux
}

func handlers(svc Services, log *slog.Logger) *Handlers {
	authMW := auth.New(svc.Sessions, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	userHandler := userAPI.NewHandler(svc.Users, svc.Sessions, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware(), authMW.Middleware())
	eventHandler := eventAPI.NewHandler(svc.Events, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		User:   userHandler,
		Event:  eventHandler,
	}
}
