// Package router wires every HTTP route and middleware into a single
// http.Handler.
//
// Route table:
//
//	GET    /                       → service status summary
//	GET    /health                 → liveness check
//	GET    /students               → list all students
//	POST   /students               → create a new student
//	GET    /students/{id}          → get one student by ID
//	DELETE /students/{id}          → delete a student
//	GET    /students/name/{name}   → case-insensitive name search
//	GET    /metrics                → Prometheus metrics (when enabled)
//
// Anything else answers a JSON 404 (or 405 for a known path with the
// wrong method).
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/http/handlers/student"
	"github.com/aanand-mishra/students-api/internal/http/handlers/system"
	"github.com/aanand-mishra/students-api/internal/metrics"
	"github.com/aanand-mishra/students-api/internal/storage/bootstrap"
	"github.com/aanand-mishra/students-api/internal/utils/response"
)

// Deps holds everything the routes need.
type Deps struct {
	Config     *config.Config
	Connection *bootstrap.Connection
	Metrics    *metrics.Collector // nil disables /metrics and request metrics
}

// New builds the router.
func New(deps Deps) http.Handler {
	store := deps.Connection.Storage

	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger)
	if deps.Metrics != nil {
		r.Use(instrument(deps.Metrics))
	}
	r.Use(recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.WriteJSON(w, http.StatusNotFound, response.Error(response.MsgRouteNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.WriteJSON(w, http.StatusMethodNotAllowed, response.Error(response.MsgMethodNotAllow))
	})

	r.Get("/", system.Home(deps.Connection))
	r.Get("/health", system.Health(deps.Connection, deps.Config.Health.AlwaysOK))

	r.Route("/students", func(r chi.Router) {
		r.Get("/", student.GetList(store))
		r.Post("/", student.New(store))
		r.Get("/name/{name}", student.SearchByName(store))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", student.GetByID(store))
			r.Delete("/", student.Delete(store))
		})
	})

	if deps.Metrics != nil && deps.Config.Metrics.Enabled {
		r.Method(http.MethodGet, deps.Config.Metrics.Path, deps.Metrics.Handler())
	}

	return r
}
