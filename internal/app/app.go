package app

import (
	"fmt"
	"net/http"
	"time"
	"verifyme/internal/app/deps"
	"verifyme/internal/app/services"
	"verifyme/internal/core/domain/logging"
	"verifyme/internal/http/handlers/health"
	activateuser "verifyme/internal/http/handlers/users/activate_user"
	signupwithemail "verifyme/internal/http/handlers/users/sign_up_with_email"
	"verifyme/internal/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	AllowedOrigins []string
	IsTestMode     bool
}

func NewRouter(log logging.Logger, db health.Pinger, s *services.Services, opts RouterOptions) http.Handler {
	usersRouter := chi.NewRouter()
	usersRouter.Method(http.MethodPost, "/", signupwithemail.New(s.SignUpWithEmail, opts.IsTestMode))
	usersRouter.Method(http.MethodPost, "/activate", activateuser.New(s.ActivateUser))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.ErrorReporting)
	router.Use(middleware.Logging(log))
	router.Use(middleware.Recoverer(log))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{signupwithemail.TestActivationCodeHeader},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Mount("/users", usersRouter)
	router.Method(http.MethodGet, "/health", health.New(log, db))

	return router
}

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	router := NewRouter(
		deps.Logger,
		deps.DB,
		s,
		RouterOptions{AllowedOrigins: deps.Config.AllowedOrigins, IsTestMode: deps.Config.IsTestMode},
	)

	address := fmt.Sprintf("0.0.0.0:%d", deps.Config.Port)

	return &http.Server{
		Handler:           router,
		Addr:              address,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
