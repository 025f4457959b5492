package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultAPIURL 是本地后端的 chat 接口地址。
const DefaultAPIURL = "http://localhost:8000/chat"

// Config 是唯一的持久化配置结构。
type Config struct {
	APIURL             string       `toml:"api_url"`
	RequestTimeoutSecs int          `toml:"request_timeout_seconds"`
	LogLevel           string       `toml:"log_level"`
	LogPath            string       `toml:"log_path"`
	Markdown           bool         `toml:"markdown"`
	Server             ServerConfig `toml:"server"`
	LLM                LLMConfig    `toml:"llm"`
	Source             string       `toml:"-"`
}

// ServerConfig 描述 `insurabot serve` 演示后端。
type ServerConfig struct {
	Listen  string   `toml:"listen"`
	DBPath  string   `toml:"db_path"`
	DataDir string   `toml:"data_dir"`
	Origins []string `toml:"allowed_origins"`
}

// LLMConfig 为可选的回答润色模型；APIKey 为空时关闭。
type LLMConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// Enabled 表示是否配置了模型访问凭据。
func (c LLMConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		LogLevel: "info",
		Markdown: true,
		Server: ServerConfig{
			Listen:  ":8000",
			DBPath:  filepath.Join("data", "insurabot.db"),
			DataDir: "data",
			Origins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		},
		LLM: LLMConfig{
			Model: "gpt-4o-mini",
		},
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".insurabot", "config.toml")
}

// Load 读取 TOML 配置（文件不存在时使用默认值），再叠加环境变量。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv("INSURABOT_API_URL")); env != "" {
		cfg.APIURL = env
	}
	if env := strings.TrimSpace(os.Getenv("INSURABOT_REQUEST_TIMEOUT")); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n >= 0 {
			cfg.RequestTimeoutSecs = n
		}
	}
	if env := strings.TrimSpace(os.Getenv("INSURABOT_LOG_LEVEL")); env != "" {
		cfg.LogLevel = env
	}
	if env := strings.TrimSpace(os.Getenv("INSURABOT_LISTEN")); env != "" {
		cfg.Server.Listen = env
	}
	if env := strings.TrimSpace(os.Getenv("INSURABOT_DB_PATH")); env != "" {
		cfg.Server.DBPath = env
	}
	if env := strings.TrimSpace(os.Getenv("INSURABOT_DATA_DIR")); env != "" {
		cfg.Server.DataDir = env
	}
	if env := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); env != "" {
		cfg.LLM.APIKey = env
	}
	if env := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); env != "" {
		cfg.LLM.BaseURL = env
	}
	return cfg
}
