package wire

import (
	"net/http"

	"capsule-hotel/internal/adaptor"
	"capsule-hotel/internal/usecase"
	"capsule-hotel/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

// Wiring builds handlers over the services and mounts every route.
func Wiring(service *usecase.Service, logger *zap.Logger) *App {
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, logger),
	}
}

func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.CORS())
	r.Use(middleware.Identity(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	wireRoom(r, handler.Room)
	wireHold(r, handler.Hold, logger)
	wireReservation(r, handler.Reservation, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
