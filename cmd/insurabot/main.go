package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"insurabot/internal/backend"
	"insurabot/internal/config"
	"insurabot/internal/logger"
	"insurabot/internal/tui"

	"github.com/joho/godotenv"
)

var log = logger.Named("main")

func main() {
	logger.Configure("info")
	// .env 缺失时只使用进程环境变量。
	_ = godotenv.Load()

	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parse args: %v", err)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "serve":
			serveMain(root, rest[1:])
			return
		case "ping":
			pingMain(root, rest[1:])
			return
		case "init":
			initMain(rest[1:])
			return
		}
	}

	runInteractive(root, rest)
}

func runInteractive(root rootArgs, args []string) {
	fs, cli := newInteractiveFlagSet("insurabot")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse args: %v", err)
	}
	cli.finalizePrompt(fs)

	overrides := prependOverrides(root.overrides, []string(cli.configOverrides))
	if strings.TrimSpace(cli.apiURL) != "" {
		overrides = append(overrides, "api_url="+strings.TrimSpace(cli.apiURL))
	}
	cfg, err := loadConfig(cli.cfgPath, overrides)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 组件占用终端，日志只能写文件。
	closer, logPath, err := setupLogging(cfg, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insurabot: failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	log.WithField("log", logPath).Infof("widget starting, endpoint=%s", cfg.APIURL)

	client := backend.New(backend.Options{
		Endpoint: cfg.APIURL,
		Timeout:  time.Duration(cfg.RequestTimeoutSecs) * time.Second,
		Log:      logger.Named("fetcher"),
	})
	result, err := tui.Run(tui.Options{
		Fetcher:        client,
		Endpoint:       client.Endpoint(),
		InitialPrompt:  cli.prompt,
		Markdown:       cfg.Markdown && !cli.noMarkdown,
		CopyableOutput: cli.copyableOutput,
		Log:            logger.Named("conversation"),
	})
	if err != nil {
		log.Fatalf("tui error: %v", err)
	}
	log.Infof("widget closed with %d messages", len(result.Messages))
}

func loadConfig(path string, overrides []string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	return config.ApplyKVOverrides(cfg, overrides), nil
}

// setupLogging 按配置设置级别与输出；toTerminal 为 true 且未配置日志文件时写 stderr。
func setupLogging(cfg config.Config, toTerminal bool) (io.Closer, string, error) {
	logger.Configure(cfg.LogLevel)
	path := strings.TrimSpace(cfg.LogPath)
	if path == "" && toTerminal {
		logger.Root().SetOutput(os.Stderr)
		return io.NopCloser(nil), "stderr", nil
	}
	if path == "" {
		path = logger.DefaultLogPath
	}
	return logger.SetupFile(path)
}

func initMain(args []string) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	written, err := config.WriteDefault(path)
	if err != nil {
		log.Fatalf("init config: %v", err)
	}
	fmt.Printf("wrote %s\n", written)
}
