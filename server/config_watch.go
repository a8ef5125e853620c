package server

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"sidearena/game"
)

const configDebounce = 100 * time.Millisecond

// WatchConfig 文件变化时重新加载，合法结果交给 fn，非法内容记日志后跳过
// 监听所在目录，以覆盖编辑器 rename 替换文件的情况；ctx 结束即停止
func WatchConfig(ctx context.Context, path string, fn func(*game.Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return err
	}
	go runConfigWatch(ctx, w, abs, fn)
	return nil
}

func runConfigWatch(ctx context.Context, w *fsnotify.Watcher, path string, fn func(*game.Config)) {
	defer w.Close()

	// 一次保存会触发一串事件，静默后再加载
	timer := time.NewTimer(configDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(configDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			Log.Warnw("config watcher error", "path", path, "error", err)
		case <-timer.C:
			cfg, err := LoadConfig(ctx, path)
			if err != nil {
				Log.Warnw("config reload rejected", "path", path, "error", err)
				continue
			}
			Log.Infow("config reloaded", "path", path)
			fn(cfg)
		}
	}
}
