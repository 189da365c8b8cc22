package reconciler

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/clipcache/clipcache/internal/clip"
	"github.com/clipcache/clipcache/internal/downloader"
	"github.com/clipcache/clipcache/internal/logging"
	"github.com/clipcache/clipcache/internal/store"
	"github.com/clipcache/clipcache/internal/twitch"
)

// UpstreamSource 抽象上游元数据查询，便于测试注入假实现。
type UpstreamSource interface {
	PopularClips(ctx context.Context, creds twitch.Credentials, login string, limit int, period twitch.Period) ([]clip.Record, error)
}

// Request 描述一次拉取请求的全部参数。
type Request struct {
	Username     string
	Credentials  twitch.Credentials
	Limit        int
	Period       twitch.Period
	ForceRefresh bool
}

// Response 是拉取操作的响应集合。
type Response struct {
	Success    bool          `json:"success"`
	Username   string        `json:"username"`
	Total      int           `json:"total"`
	Downloaded int           `json:"downloaded"`
	Clips      []clip.Record `json:"clips"`
	Cached     bool          `json:"cached"`
}

// Options controls reconciler thresholds.
type Options struct {
	// MinCached 是快速路径阈值；MaxClips 是响应条目硬上限。
	MinCached int
	MaxClips  int
}

// Reconciler 编排 “缓存够不够 → 回源 → 合并” 的全流程。
type Reconciler struct {
	store     store.Store
	upstream  UpstreamSource
	fetcher   downloader.Fetcher
	logger    *logrus.Logger
	minCached int
	maxClips  int
}

// New 构造编排器，所有依赖均为必填。
func New(s store.Store, upstream UpstreamSource, fetcher downloader.Fetcher, logger *logrus.Logger, opts Options) (*Reconciler, error) {
	if s == nil {
		return nil, errors.New("store required")
	}
	if upstream == nil {
		return nil, errors.New("upstream source required")
	}
	if fetcher == nil {
		return nil, errors.New("fetcher required")
	}
	if logger == nil {
		return nil, errors.New("logger required")
	}
	if opts.MinCached <= 0 {
		opts.MinCached = 10
	}
	if opts.MaxClips <= 0 {
		opts.MaxClips = 20
	}

	return &Reconciler{
		store:     s,
		upstream:  upstream,
		fetcher:   fetcher,
		logger:    logger,
		minCached: opts.MinCached,
		maxClips:  opts.MaxClips,
	}, nil
}

// FetchClips 返回一个主播的剪辑集合。缓存充足时直接命中；否则查询上游并
// 逐条补齐，单条下载失败只影响该条目。
func (r *Reconciler) FetchClips(ctx context.Context, req Request) (*Response, error) {
	if req.Limit <= 0 {
		req.Limit = 15
	}
	if req.Period == "" {
		req.Period = twitch.PeriodWeek
	}

	existing := r.store.List(ctx)

	fields := logging.FetchFields(req.Username, string(req.Period), req.Limit, false)
	fields["existing"] = len(existing)

	if len(existing) >= r.minCached && !req.ForceRefresh {
		fields["cached"] = true
		r.logger.WithFields(fields).Info("缓存充足，直接返回")

		clips := existing
		if len(clips) > r.maxClips {
			clips = clips[:r.maxClips]
		}
		return &Response{
			Success:    true,
			Username:   req.Username,
			Total:      len(existing),
			Downloaded: len(existing),
			Clips:      clips,
			Cached:     true,
		}, nil
	}

	candidates, err := r.upstream.PopularClips(ctx, req.Credentials, req.Username, req.Limit, req.Period)
	if err != nil {
		// 前置条件失败：凭证、用户解析或列表查询，任何一个都中止请求。
		return nil, err
	}
	fields["candidates"] = len(candidates)
	r.logger.WithFields(fields).Info("缓存不足，回源补齐")

	// 已缓存条目永远保留在结果里。
	merged := make([]clip.Record, len(existing))
	copy(merged, existing)

	seen := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		seen[rec.ID] = struct{}{}
	}

	fresh := 0
	for _, candidate := range candidates {
		if _, dup := seen[candidate.ID]; dup {
			r.logger.WithFields(logrus.Fields{
				"action": "candidate_skip",
				"clip":   candidate.ID,
			}).Debug("候选已在缓存中，跳过")
			continue
		}
		if len(merged) >= r.maxClips {
			r.logger.WithFields(logrus.Fields{
				"action": "cap_reached",
				"total":  len(merged),
			}).Info("达到条目上限，停止下载")
			break
		}

		name, err := r.fetcher.Fetch(ctx, candidate)
		if err != nil {
			// 单条失败只影响该候选。
			continue
		}

		candidate.LocalFile = name
		candidate.LocalURL = r.store.PublicURL(name)
		merged = append(merged, candidate)
		fresh++
	}

	r.logger.WithFields(logrus.Fields{
		"action":     "reconcile_done",
		"username":   req.Username,
		"total":      len(merged),
		"downloaded": fresh,
	}).Info("回源补齐完成")

	return &Response{
		Success:    true,
		Username:   req.Username,
		Total:      len(merged),
		Downloaded: len(merged),
		Clips:      merged,
		Cached:     false,
	}, nil
}
