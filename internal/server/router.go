package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/clipcache/clipcache/internal/config"
	"github.com/clipcache/clipcache/internal/reconciler"
	"github.com/clipcache/clipcache/internal/store"
)

// serviceName 对外暴露在健康探针里的服务标识。
const serviceName = "Cached Twitch Clips Player"

// ClipService describes the component responsible for the cache-first fetch
// flow. It allows injecting fake services during tests.
type ClipService interface {
	FetchClips(ctx context.Context, req reconciler.Request) (*reconciler.Response, error)
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger  *logrus.Logger
	Config  *config.Config
	Service ClipService
	Store   store.Store
}

const contextKeyRequestID = "_clipcache_request_id"

// NewApp builds a Fiber application with CORS, panic recovery, request IDs
// and the clip routes registered.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Service == nil {
		return nil, errors.New("clip service is required")
	}
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Config.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.Config.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestIDMiddleware())

	h := &handlers{
		logger:  opts.Logger,
		cfg:     opts.Config,
		service: opts.Service,
		store:   opts.Store,
	}

	app.Get("/health", h.health)
	app.Get("/popular-clips/:username", h.popularClips)
	app.Get("/list-clips", h.listClips)
	app.Post("/cleanup", h.cleanup)

	// 缓存目录本身就是对外的静态视频源。
	app.Use(opts.Config.VideoURLPath, static.New(opts.Store.Dir()))

	return app, nil
}

// requestIDMiddleware 为每个请求生成 UUID 并回写 X-Request-ID。
func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
