// Package rest exposes the account service over HTTP/JSON using fiber.
package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Service      UserService
	Ready        Pinger
	Logger       logging.Logger
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	AllowOrigins string
}

// NewApp builds the fiber application with every route registered.
func NewApp(opts Options) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("module", "rest")

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	allow := opts.AllowOrigins
	if allow == "" {
		allow = "*"
	}
	app.Use(requestLogger(logger, opts.Metrics))
	app.Use(cors.New(cors.Config{AllowOrigins: allow}))

	health := NewHealthHandler(opts.Ready)
	app.Get("/healthz", health.Health)
	app.Get("/readyz", health.Ready)

	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	Register(app, NewUserHandler(opts.Service))

	return app
}

// Register wires the account routes onto app.
func Register(app *fiber.App, users *UserHandler) {
	api := app.Group("/api")

	api.Post("/signup", users.Signup)
	api.Post("/login", users.Login)
	api.Post("/token", users.Token)
	api.Get("/me", users.Me)
	api.Get("/users", users.ListUsers)
	api.Get("/users/:id", users.GetUser)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	msg := "internal error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return Error(c, code, msg)
}
