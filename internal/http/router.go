package http

import (
	"net/http"

	"nippo/internal/auth"
	"nippo/internal/config"
	"nippo/internal/http/handler"
	mw "nippo/internal/http/middleware"
	"nippo/internal/report"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)
	r.Post("/auth/logout", ah.Logout)

	me := &handler.MeHandler{}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", me.Me)

	svc := &report.Service{DB: db}
	rh := &handler.ReportHandler{Svc: svc}
	rr := &handler.ReportReadHandler{Svc: svc}

	r.Route("/reports", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/", rh.Create)
		r.Get("/", rr.List)
		r.Get("/export", rr.Export)

		r.Get("/{id}", rr.Get)
		r.Put("/{id}", rh.Update)
		r.Delete("/{id}", rh.Delete)
	})

	return r
}
