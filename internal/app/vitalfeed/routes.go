// Package vitalfeed предоставляет маршруты основного приложения.
package vitalfeed

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/vitalfeed/vitalfeed-backend/internal/config"
	accesslist "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/access/list"
	accesssubmit "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/access/submit"
	"github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/auth/login"
	"github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/auth/logout"
	"github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/auth/resetpassword"
	cartadditem "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/cart/additem"
	cartcheckout "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/cart/checkout"
	cartclear "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/cart/clear"
	cartget "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/cart/get"
	cartremoveitem "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/cart/removeitem"
	cartupdateitem "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/cart/updateitem"
	"github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/health"
	productlist "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/product/list"
	subassign "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/subscription/assign"
	subremove "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/subscription/remove"
	subupdate "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/subscription/update"
	usercreate "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/user/createfromdemande"
	userlist "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/user/list"
	vetall "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/veterinaire/all"
	vetme "github.com/vitalfeed/vitalfeed-backend/internal/http/handlers/veterinaire/me"
	"github.com/vitalfeed/vitalfeed-backend/internal/http/middlewarectx"
	accesssvc "github.com/vitalfeed/vitalfeed-backend/internal/services/access"
	authsvc "github.com/vitalfeed/vitalfeed-backend/internal/services/auth"
	cartsvc "github.com/vitalfeed/vitalfeed-backend/internal/services/cart"
	usersvc "github.com/vitalfeed/vitalfeed-backend/internal/services/user"
	"github.com/vitalfeed/vitalfeed-backend/internal/storage"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, db *storage.Storage,
	authService *authsvc.Service, userService *usersvc.Service,
	accessService *accesssvc.Service, cartService *cartsvc.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middlewarectx.AuthGateMiddleware(authService, db, logger))
	r.Use(middlewarectx.RateLimitMiddleware(logger))

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/login", login.New(logger, authService, cfg.TokenTTL).ServeHTTP)
		r.Post("/access-requests", accesssubmit.New(logger, accessService).ServeHTTP)
		r.Get("/products/all", productlist.New(logger, cartService).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Доступно с токеном даже при истёкшей подписке
		r.Post("/logout", logout.New(logger).ServeHTTP)
		r.Post("/reset-password", resetpassword.New(logger, authService).ServeHTTP)
		r.Get("/veterinaires/me", vetme.New(logger, userService).ServeHTTP)
		r.Get("/veterinaires/all", vetall.New(logger, userService).ServeHTTP)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartget.New(logger, cartService).ServeHTTP)
			r.Delete("/", cartclear.New(logger, cartService).ServeHTTP)
			r.Post("/items", cartadditem.New(logger, cartService).ServeHTTP)
			r.Put("/items/{itemId}", cartupdateitem.New(logger, cartService).ServeHTTP)
			r.Delete("/items/{itemId}", cartremoveitem.New(logger, cartService).ServeHTTP)
			r.Post("/orders/checkout", cartcheckout.New(logger, cartService).ServeHTTP)
		})

		// Администрирование
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAdmin(logger))
			r.Get("/access-requests", accesslist.New(logger, accessService).ServeHTTP)
			r.Get("/users/all", userlist.New(logger, userService).ServeHTTP)
			r.Post("/users/create-from-demande/{demandeId}", usercreate.New(logger, userService).ServeHTTP)
			r.Post("/subscriptions/assign/{userId}", subassign.New(logger, userService).ServeHTTP)
			r.Put("/subscriptions/{id}", subupdate.New(logger, userService).ServeHTTP)
			r.Delete("/subscriptions/{id}", subremove.New(logger, userService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
