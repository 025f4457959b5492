package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "api_url", "url":
			cfg.APIURL = val
		case "request_timeout_seconds", "timeout":
			if n, err := strconv.Atoi(val); err == nil && n >= 0 {
				cfg.RequestTimeoutSecs = n
			}
		case "log_level":
			cfg.LogLevel = val
		case "log_path":
			cfg.LogPath = val
		case "markdown":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.Markdown = b
			}
		case "server.listen", "listen":
			cfg.Server.Listen = val
		case "server.db_path", "db_path":
			cfg.Server.DBPath = val
		case "server.data_dir", "data_dir":
			cfg.Server.DataDir = val
		case "llm.api_key":
			cfg.LLM.APIKey = val
		case "llm.base_url":
			cfg.LLM.BaseURL = val
		case "llm.model", "model":
			cfg.LLM.Model = val
		}
	}
	return cfg
}
