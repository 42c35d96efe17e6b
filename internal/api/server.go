package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/capiorg/backend/internal/auth"
	"github.com/capiorg/backend/internal/metrics"
	"github.com/capiorg/backend/internal/service"
	"github.com/capiorg/backend/internal/ws"
)

// Options carries the transport timeouts. RequestTimeout bounds how long a
// single request may hold a pooled database connection.
type Options struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

type Server struct {
	chats    *service.ChatService
	messages *service.MessageService
	users    *service.UserService
	log      *zap.SugaredLogger
}

func NewServer(
	opts Options,
	authn auth.Authenticator,
	chats *service.ChatService,
	messages *service.MessageService,
	users *service.UserService,
	wsrv *ws.Server,
	log *zap.SugaredLogger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	s := &Server{chats: chats, messages: messages, users: users, log: log}

	v1 := app.Group("/v1")
	v1.Use(JWTAuth(authn))

	// registered ahead of the request timeout so long-lived connections are
	// not bounded by it
	if wsrv != nil {
		v1.Get("/ws", websocket.New(wsrv.Handler()))
	}

	v1.Use(RequestTimeout(opts.RequestTimeout))

	v1.Get("/chats", s.listChats)
	v1.Post("/chats", s.createChat)
	v1.Get("/chats/:chat_id", s.getChat)

	v1.Get("/chats/:chat_id/messages", s.listMessages)
	v1.Get("/chats/:chat_id/messages/:message_id", s.listThread)
	v1.Post("/chats/:chat_id/messages", s.sendMessage)
	v1.Patch("/chats/:chat_id/messages/:message_id", s.updateMessage)
	v1.Delete("/chats/:chat_id/messages/:message_id", s.deleteMessage)

	v1.Get("/users/me", s.me)
	v1.Patch("/users/me", s.updateMe)
	v1.Delete("/users/me", s.deleteMe)

	return app
}
