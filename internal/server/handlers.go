package server

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/clipcache/clipcache/internal/clip"
	"github.com/clipcache/clipcache/internal/config"
	"github.com/clipcache/clipcache/internal/logging"
	"github.com/clipcache/clipcache/internal/reconciler"
	"github.com/clipcache/clipcache/internal/store"
	"github.com/clipcache/clipcache/internal/twitch"
)

type handlers struct {
	logger  *logrus.Logger
	cfg     *config.Config
	service ClipService
	store   store.Store
}

func (h *handlers) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "OK",
		"service":  serviceName,
		"clipsDir": h.store.Dir(),
	})
}

// popularClips 处理缓存优先的拉取请求。凭证缺失是前置条件失败，
// 直接以 400 报告调用方。
func (h *handlers) popularClips(c fiber.Ctx) error {
	username := c.Params("username")

	creds := twitch.Credentials{
		ClientID:     c.Query("clientId"),
		ClientSecret: c.Query("clientSecret"),
	}
	if !creds.Complete() && h.cfg.HasCredentials() {
		// query 凭证优先，配置凭证只作兜底。
		creds = twitch.Credentials{
			ClientID:     h.cfg.TwitchClientID,
			ClientSecret: h.cfg.TwitchClientSecret,
		}
	}
	if !creds.Complete() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "clientId and clientSecret required",
		})
	}

	limit := 15
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	req := reconciler.Request{
		Username:     username,
		Credentials:  creds,
		Limit:        limit,
		Period:       twitch.ParsePeriod(c.Query("period")),
		ForceRefresh: c.Query("forceRefresh") == "true",
	}

	started := time.Now()
	resp, err := h.service.FetchClips(requestContext(c), req)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"action":     "fetch_clips",
			"username":   username,
			"request_id": RequestID(c),
		}).Error("拉取剪辑失败")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	fields := logging.FetchFields(username, string(req.Period), req.Limit, resp.Cached)
	fields["total"] = resp.Total
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	fields["request_id"] = RequestID(c)
	h.logger.WithFields(fields).Info("拉取剪辑完成")

	return c.JSON(resp)
}

func (h *handlers) listClips(c fiber.Ctx) error {
	clips := h.store.List(requestContext(c))
	if clips == nil {
		clips = []clip.Record{}
	}
	return c.JSON(fiber.Map{"clips": clips})
}

func (h *handlers) cleanup(c fiber.Ctx) error {
	deleted := h.store.Sweep(requestContext(c), h.cfg.RetentionAge.DurationValue())
	h.logger.WithFields(logrus.Fields{
		"action":     "cleanup",
		"deleted":    deleted,
		"request_id": RequestID(c),
	}).Info("清理过期剪辑完成")
	return c.JSON(fiber.Map{
		"success":      true,
		"deletedFiles": deleted,
	})
}

func requestContext(c fiber.Ctx) context.Context {
	if ctx := c.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
