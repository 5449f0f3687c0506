package wire

import (
	"net/http"

	"bus-reservation/internal/adaptor"
	"bus-reservation/internal/data/repository"
	"bus-reservation/internal/events"
	"bus-reservation/internal/usecase"
	"bus-reservation/pkg/database"
	"bus-reservation/pkg/middleware"
	"bus-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired application
type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies
func Wiring(
	db database.PgxIface,
	repo *repository.Repository,
	publisher events.Publisher,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	// Initialize services and handlers
	service := usecase.NewService(db, repo, publisher, config, logger)
	handler := adaptor.NewHandler(service, logger)

	// Setup router
	router := setupRouter(handler, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the chi router
func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireBooking(r, handler.Booking)
	wireSchedule(r, handler.Schedule)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
