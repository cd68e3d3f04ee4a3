// Package transport exposes the dialogue engine over HTTP: a Twilio-style
// messaging webhook, a JSON chat endpoint and a health probe.
package transport

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	errx "github.com/bytecode-faq-assistant/server/internal/core/error"
	logx "github.com/bytecode-faq-assistant/server/pkg/logger"
)

// Handler turns one inbound message into a reply. It must not fail.
type Handler interface {
	Handle(ctx context.Context, in model.Inbound) model.Reply
}

type Config struct {
	Addr         string        `envconfig:"HTTP_ADDR" default:":5000"`
	BodyLimit    int           `envconfig:"HTTP_BODY_LIMIT" default:"65536"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
}

type Server struct {
	app     *fiber.App
	cfg     Config
	handler Handler
}

func New(cfg Config, h Handler) *Server {
	app := fiber.New(fiber.Config{
		// Handlers keep request strings in conversation state.
		Immutable:             true,
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())

	s := &Server{app: app, cfg: cfg, handler: h}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.health)
	s.app.Post("/", s.webhook)
	s.app.Post("/chat", s.chat)
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Run blocks until the listener stops.
func (s *Server) Run() error {
	logx.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
	return s.app.Listen(s.cfg.Addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// errorHandler keeps internal details out of responses.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	status := errx.StatusOf(err, fiber.StatusInternalServerError)
	message := errx.SystemErrorMessage
	var appErr *errx.AppError
	if errors.As(err, &appErr) && status < fiber.StatusInternalServerError {
		message = appErr.Message
	}

	logx.Error().Err(err).Str("path", c.Path()).Int("status", status).Msg("Request failed")
	return c.Status(status).JSON(fiber.Map{"error": message})
}
