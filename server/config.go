package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sidearena/game"
)

const remoteConfigTimeout = 10 * time.Second

// ConfigPathEnv 覆盖配置文件路径的环境变量
const ConfigPathEnv = "GAME_CONFIG_PATH"

// DefaultConfigPaths 按查找顺序排列的候选配置文件
func DefaultConfigPaths() []string {
	var paths []string
	if p := os.Getenv(ConfigPathEnv); p != "" {
		paths = append(paths, p)
	}
	return append(paths, "game_config.yaml", "game_config.yml", "game_config.json")
}

// ParseConfig 在默认值之上解析 YAML/JSON 并校验（缺省字段保留默认值）
func ParseConfig(data []byte) (*game.Config, error) {
	cfg := game.DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfig 读取 path；若指定 remote_config 则改用远程配置，拉取失败时保留本地配置
func LoadConfig(ctx context.Context, path string) (*game.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.RemoteConfig == "" {
		return cfg, nil
	}

	remote, err := FetchRemoteConfig(ctx, cfg.RemoteConfig)
	if err != nil {
		Log.Warnw("remote config unavailable, using local file", "url", cfg.RemoteConfig, "path", path, "error", err)
		return cfg, nil
	}
	Log.Infow("loaded remote config", "url", cfg.RemoteConfig)
	return remote, nil
}

// FetchRemoteConfig 下载并解析远程配置
func FetchRemoteConfig(ctx context.Context, url string) (*game.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteConfigTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	// 远程配置不再二次跳转
	cfg.RemoteConfig = ""
	return cfg, nil
}

// LoadConfigOrDefault 加载第一个存在的候选文件，失败则回退默认配置
// 使用默认配置时返回的路径为空
func LoadConfigOrDefault(ctx context.Context, paths ...string) (*game.Config, string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		cfg, err := LoadConfig(ctx, p)
		if err != nil {
			Log.Warnw("config load failed, using defaults", "path", p, "error", err)
			return game.DefaultConfig(), ""
		}
		Log.Infow("loaded config", "path", p, "platforms", len(cfg.Platforms), "walls", len(cfg.Walls),
			"idle_timeout", cfg.IdleTimeoutDuration())
		return cfg, p
	}
	Log.Infow("no config file found, using defaults")
	return game.DefaultConfig(), ""
}
