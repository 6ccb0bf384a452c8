package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/thrivebrands/beaconiq/internal/application"
)

// Handler is the HTTP adapter entrypoint for dashboard use-cases.
type Handler struct {
	service         *application.Service
	ready           func() error
	streamKeepAlive time.Duration
}

type HandlerOption func(*Handler)

// WithReadiness sets the probe behind /readyz.
func WithReadiness(check func() error) HandlerOption {
	return func(h *Handler) { h.ready = check }
}

func NewHandler(service *application.Service, opts ...HandlerOption) *Handler {
	h := &Handler{service: service, streamKeepAlive: 15 * time.Second}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter registers the API routes. Every /api route except login requires
// a bearer token.
func NewRouter(handler *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)
	r.Use(corsMiddleware(allowedOrigins))

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", handler.login)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)

			r.Get("/users", handler.listUsers)
			r.Get("/users/me", handler.currentUser)
			r.Get("/dashboard", handler.dashboard)

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/board", handler.getBoard)
				r.Get("/board/stream", handler.streamBoard)
				r.Post("/recommendations/generate", handler.generateRecommendations)
				r.Get("/mutations/{mutation_id}", handler.getMutation)
				r.Post("/{campaign_id}/activate", handler.activateCampaign)
				r.Post("/{campaign_id}/deactivate", handler.deactivateCampaign)
				r.Post("/{campaign_id}/archive", handler.archiveCampaign)
			})

			r.Route("/kanban", func(r chi.Router) {
				r.Get("/recommendations", handler.kanbanRecommendations)
				r.Post("/accept", handler.kanbanAccept)
				r.Get("/campaigns/{campaign_id}/goals", handler.listCampaignGoals)
				r.Post("/generate-goals", handler.generateGoals)
				r.Post("/goals", handler.createGoal)
			})

			r.Route("/goals", func(r chi.Router) {
				r.Get("/by-department/{department}", handler.listDepartmentGoals)
				r.Get("/{goal_id}", handler.getGoal)
				r.Put("/{goal_id}", handler.updateGoal)
				r.Delete("/{goal_id}", handler.deleteGoal)
			})

			r.Get("/goal-plans/{key}", handler.getGoalPlan)
			r.Put("/goal-plans/{key}", handler.saveGoalPlan)

			r.Get("/filters/options", handler.filterOptions)
			r.Route("/analytics", func(r chi.Router) {
				r.Post("/cache/invalidate", handler.invalidateAnalytics)
				r.Get("/{report}", handler.analyticsReport)
			})
			r.Post("/data/sync", handler.requestDataSync)

			r.Post("/insights/chat", handler.chat)
			r.Post("/insights/chat/stream", handler.chatStream)
			r.Get("/insights/sessions/{session_id}", handler.transcript)
			r.Post("/ai/chat", handler.aiChat)
		})
	})

	return r
}
