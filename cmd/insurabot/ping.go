package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"insurabot/internal/backend"
	"insurabot/internal/chat"
)

const defaultPingMessage = "status of CLM1001"

func pingMain(root rootArgs, args []string) {
	if err := runPing(root, args, os.Stdout); err != nil {
		log.Fatalf("ping failed: %v", err)
	}
}

func runPing(root rootArgs, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ping", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var cfgPath string
	var urlOverride string
	var timeoutSeconds int

	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.insurabot/config.toml)")
	fs.StringVar(&urlOverride, "url", "", "Chat endpoint override")
	fs.IntVar(&timeoutSeconds, "timeout", 0, "Timeout seconds (default from config, 10 when unset)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(cfgPath, prependOverrides(root.overrides, nil))
	if err != nil {
		return err
	}
	endpoint := strings.TrimSpace(urlOverride)
	if endpoint == "" {
		endpoint = strings.TrimSpace(cfg.APIURL)
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = cfg.RequestTimeoutSecs
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 10
	}
	message := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if message == "" {
		message = defaultPingMessage
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSeconds)*time.Second)
	defer cancel()

	if err := backend.CheckReachable(ctx, endpoint); err != nil {
		return fmt.Errorf("endpoint unreachable: %w", err)
	}

	client := backend.New(backend.Options{Endpoint: endpoint})
	result := client.FetchResult(ctx, message)
	if result.Fallback {
		return fmt.Errorf("backend returned the fallback reply: %w", result.Err)
	}
	msg := result.Payload.AgentMessage()
	if msg.Kind == chat.KindClaim {
		_, _ = fmt.Fprintf(out, "ok: %s\n", chat.ClaimSummary(*msg.Claim))
		return nil
	}
	_, _ = fmt.Fprintf(out, "ok: %s\n", msg.Text)
	return nil
}
