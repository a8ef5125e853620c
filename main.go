package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap/zapcore"

	"sidearena/game"
	"sidearena/server"
)

// sidearena 入口：权威横版竞技场服务（WebSocket、SSE 与 HTTP API）
func main() {
	defAddr := ":3000"
	if port := os.Getenv("PORT"); port != "" {
		defAddr = ":" + port
	}

	var (
		addr       = flag.String("addr", defAddr, "listen address, e.g. :3000")
		configPath = flag.String("config", "", "config file (YAML or JSON); defaults to $"+server.ConfigPathEnv+" or ./game_config.yaml")
		logPath    = flag.String("log", "sidearena.log", "rotating log file; empty logs to stderr only")
		debug      = flag.Bool("debug", false, "enable debug logging")
		roomID     = flag.String("room", "room-1", "default room")
		webDir     = flag.String("web", "web", "static files directory; empty disables")
	)
	flag.Parse()

	level := zapcore.InfoLevel
	if *debug {
		level = zapcore.DebugLevel
	}
	// 使用 zap 日志，文件输出带滚动
	if err := server.InitLogger(*logPath, level); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paths := server.DefaultConfigPaths()
	if *configPath != "" {
		paths = []string{*configPath}
	}
	cfg, loadedFrom := server.LoadConfigOrDefault(ctx, paths...)

	// 先预创建一个默认房间，便于快速试跑
	rm := server.NewRoomManager(ctx, cfg, server.DefaultRoomOptions())
	_ = rm.GetOrCreateRoom(*roomID)

	// 配置热更新只影响之后新建的房间
	if loadedFrom != "" {
		err := server.WatchConfig(ctx, loadedFrom, func(c *game.Config) {
			rm.SetConfig(c)
		})
		if err != nil {
			server.Log.Warnw("config watcher disabled", "path", loadedFrom, "error", err)
		}
	}

	// 前后端分离：将 / 映射到 web 目录的静态资源
	var static http.Handler
	if *webDir != "" {
		static = http.FileServer(http.Dir(*webDir))
	}
	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.NewServer(ctx, rm, *roomID).Routes(static),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		server.Log.Infof("sidearena listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C / SIGTERM）
	<-ctx.Done()
	server.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		server.Log.Warnw("shutdown", "error", err)
	}
}
