package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/clipcache/clipcache/internal/config"
	"github.com/clipcache/clipcache/internal/downloader"
	"github.com/clipcache/clipcache/internal/logging"
	"github.com/clipcache/clipcache/internal/reconciler"
	"github.com/clipcache/clipcache/internal/server"
	"github.com/clipcache/clipcache/internal/store"
	"github.com/clipcache/clipcache/internal/twitch"
	"github.com/clipcache/clipcache/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	// .env 仅作凭证兜底，缺失不算错误。
	_ = godotenv.Load()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["storage"] = cfg.StoragePath
		fields["credentials"] = cfg.AuthMode()
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序：配置 → 缓存目录 → 上游客户端 → 下载器 → 编排器 → Fiber server，
	// 保证所有请求共享同一份存储与 HTTP 连接池。
	clipStore, err := store.NewStore(cfg.StoragePath, cfg.VideoURLPath, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化缓存目录失败: %v\n", err)
		return 1
	}

	upstream := twitch.NewClient(twitch.NewUpstreamClient(), cfg.UpstreamTimeout.DurationValue())

	fetcher, err := downloader.NewYTDLP(cfg.DownloaderBinary, clipStore, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化下载器失败: %v\n", err)
		return 1
	}

	svc, err := reconciler.New(clipStore, upstream, fetcher, logger, reconciler.Options{
		MinCached: cfg.CacheMinEntries,
		MaxClips:  cfg.CacheMaxEntries,
	})
	if err != nil {
		fmt.Fprintf(stdErr, "初始化编排器失败: %v\n", err)
		return 1
	}

	if interval := cfg.SweepInterval.DurationValue(); interval > 0 {
		go sweepLoop(clipStore, logger, interval, cfg.RetentionAge.DurationValue())
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["listen_port"] = cfg.ListenPort
	fields["storage"] = cfg.StoragePath
	fields["credentials"] = cfg.AuthMode()
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, svc, clipStore, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("clipcache", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 CLIPCACHE_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("CLIPCACHE_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

// sweepLoop 按固定间隔执行保留清理；失败只记录日志，不影响服务。
func sweepLoop(s store.Store, logger *logrus.Logger, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		deleted := s.Sweep(context.Background(), maxAge)
		logger.WithFields(logrus.Fields{
			"action":  "sweep_tick",
			"deleted": deleted,
		}).Info("定时清理完成")
	}
}

func startHTTPServer(cfg *config.Config, svc server.ClipService, s store.Store, logger *logrus.Logger) error {
	app, err := server.NewApp(server.AppOptions{
		Logger:  logger,
		Config:  cfg,
		Service: svc,
		Store:   s,
	})
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   cfg.ListenPort,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", cfg.ListenPort))
}
