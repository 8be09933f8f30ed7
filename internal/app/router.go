package app

import (
	"context"
	"net/http"
	"run_the_numbers/internal/middleware"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const healthTimeout = 500 * time.Millisecond

func allowAnyOrigin(*http.Request) bool { return true }

func (sp *ServiceProvider) Router(ctx context.Context) chi.Router {
	r := chi.NewRouter()

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           60 * 15,
	}))
	r.Use(chimw.RealIP, chimw.Recoverer)

	// Служебные endpoints и картинки призов
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", sp.health)
	r.Handle(imagesURLPrefix+"*", http.StripPrefix(imagesURLPrefix, http.FileServer(http.Dir(sp.AppCfg().ImageDir()))))

	r.Group(func(r chi.Router) {
		// Пользователь по access токену или гость по cookie
		r.Use(middleware.Identity(sp.JWTCfg().AccessTokenSecretKey(), sp.Logger()))

		// Auth endpoints
		authHandler := sp.AuthHandler(ctx)
		r.Route("/auth", func(rr chi.Router) {
			rr.Post("/register", authHandler.Register)
			rr.Post("/login", authHandler.Login)
			rr.Post("/refresh", authHandler.Refresh)
			rr.Post("/logout", authHandler.Logout)
		})

		// Table endpoints
		tableHandler := sp.TableHandler(ctx)
		r.Route("/table", func(rr chi.Router) {
			rr.Get("/", tableHandler.State)
			rr.Post("/bets", tableHandler.PlaceBet)
			rr.Delete("/bets", tableHandler.ClearBets)
			rr.Post("/rebet", tableHandler.Rebet)
			rr.Put("/paytable", tableHandler.SelectPaytable)
			rr.Post("/deal", tableHandler.Deal)
			rr.Post("/pause", tableHandler.Pause)
			rr.Post("/resume", tableHandler.Resume)
			rr.Post("/reset", tableHandler.Reset)
			rr.With(middleware.RequireUser).Post("/sync", tableHandler.Sync)
			rr.Get("/ws", sp.WSHub(ctx).HandleWS)
		})

		// Prize shop
		prizeHandler := sp.PrizeHandler(ctx)
		r.Get("/prizes", prizeHandler.List)
		r.With(middleware.RequireUser).Post("/prizes/{id}/redeem", prizeHandler.Redeem)

		// Управление призами, только администратор
		adminHandler := sp.AdminHandler(ctx)
		r.Route("/admin", func(rr chi.Router) {
			rr.Use(middleware.RequireAdmin)
			rr.Get("/prizes", adminHandler.ListPrizes)
			rr.Post("/prizes", adminHandler.CreatePrize)
			rr.Post("/prizes/image", adminHandler.UploadImage)
			rr.Put("/prizes/{id}", adminHandler.UpdatePrize)
			rr.Delete("/prizes/{id}", adminHandler.DeletePrize)
			rr.Patch("/prizes/{id}/status", adminHandler.SetPrizeStatus)
		})

		// Статистика казино
		r.Get("/stats/house", sp.StatsHandler().House)
	})

	return r
}

// health проверяет Postgres и, если подключён, Redis
func (sp *ServiceProvider) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := sp.DBClient(ctx).Ping(ctx); err != nil {
		sp.Logger().Warn("health: postgres", zap.Error(err))
		http.Error(w, "pg", http.StatusServiceUnavailable)
		return
	}
	if rdb := sp.RedisClient(ctx); rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			sp.Logger().Warn("health: redis", zap.Error(err))
			http.Error(w, "redis", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
