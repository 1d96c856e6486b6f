package http

import (
	"context"
	"net/http"
	"time"

	httpmw "github.com/cwrk-planet/meeting-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/meeting-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Pinger reports whether a dependency answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(h *Handler, sessions httpmw.SessionReader, wsServer *ws.Server, store Pinger, opts RouterOptions) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 20 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(httpmw.Tracing)
	r.Use(httpmw.Authenticate(sessions))
	r.Use(httpmw.RequestLogger)
	r.Use(middlewareChi.Recoverer)

	// pages and sign-in
	r.Get("/", h.Home)
	r.Get("/login", h.Login)
	r.Get("/auth/github", h.GitHubLogin)
	r.Get("/auth/github/callback", h.GitHubCallback)
	r.Get("/logout", h.Logout)
	r.With(httpmw.RequirePage).Get("/meeting/{id}", h.MeetingPage)

	// live feed; no timeout, the connection is long-lived
	r.With(httpmw.RequireUser).Get("/ws/meetings/{id}", wsServer.HandleWS)

	r.Group(func(pr chi.Router) {
		pr.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		pr.Use(httpmw.RequireUser)
		pr.Use(middlewareChi.Timeout(opts.RequestTimeout))

		pr.Post("/meetings", h.CreateMeeting)

		pr.Route("/api/meetings/{id}", func(mr chi.Router) {
			mr.Get("/", h.GetMeeting)

			mr.Post("/agenda", h.AddAgendaItem)
			mr.Delete("/agenda/{itemId}", h.RemoveAgendaItem)
			mr.Post("/agenda/{itemId}/move", h.MoveAgendaItem)
			mr.Post("/agenda/{itemId}/start", h.StartAgendaItem)

			mr.Post("/queue", h.EnqueueSpeaker)
			mr.Delete("/queue/{ghid}", h.DequeueSpeaker)
			mr.Post("/queue/next", h.AdvanceSpeaker)
			mr.Post("/floor/yield", h.YieldFloor)

			mr.Post("/chairs", h.AddChair)
			mr.Delete("/chairs/{ghid}", h.RemoveChair)
		})
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
