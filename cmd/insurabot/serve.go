package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"insurabot/internal/config"
	"insurabot/internal/faq"
	"insurabot/internal/llm"
	"insurabot/internal/logger"
	"insurabot/internal/server"
	"insurabot/internal/store"
)

func serveMain(root rootArgs, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var cfgPath, listen string
	var overrides stringSlice
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.insurabot/config.toml)")
	fs.StringVar(&listen, "listen", "", "Listen address override (default :8000)")
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse args: %v", err)
	}

	all := prependOverrides(root.overrides, []string(overrides))
	if strings.TrimSpace(listen) != "" {
		all = append(all, "server.listen="+strings.TrimSpace(listen))
	}
	cfg, err := loadConfig(cfgPath, all)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	closer, _, err := setupLogging(cfg, true)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := runServe(ctx, cfg); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// runServe 组装存储、FAQ 与可选模型后启动演示后端，直到 ctx 结束。
func runServe(ctx context.Context, cfg config.Config) error {
	repo, faqs, phraser, err := buildBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			log.Warnf("close store: %v", closeErr)
		}
	}()

	srv := server.New(server.Options{
		Addr:      cfg.Server.Listen,
		Origins:   cfg.Server.Origins,
		Repo:      repo,
		Responder: server.NewResponder(repo, faqs, phraser, logger.Named("responder")),
		Log:       logger.Named("server"),
	})
	return srv.Run(ctx)
}

func buildBackend(ctx context.Context, cfg config.Config) (store.Repository, *faq.Index, server.Phraser, error) {
	repo, err := store.NewSQLite(cfg.Server.DBPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize database: %w", err)
	}
	if err := repo.Ping(ctx); err != nil {
		_ = repo.Close()
		return nil, nil, nil, fmt.Errorf("database health check: %w", err)
	}
	if err := store.Seed(ctx, repo, store.SampleClaims()); err != nil {
		_ = repo.Close()
		return nil, nil, nil, fmt.Errorf("seed claims: %w", err)
	}
	if err := store.SeedPolicies(ctx, repo, store.SamplePolicies()); err != nil {
		_ = repo.Close()
		return nil, nil, nil, fmt.Errorf("seed policies: %w", err)
	}
	stats, err := store.ImportDir(ctx, repo, cfg.Server.DataDir)
	if err != nil {
		_ = repo.Close()
		return nil, nil, nil, fmt.Errorf("import data: %w", err)
	}
	log.WithFields(logger.Fields{
		"db":       cfg.Server.DBPath,
		"claims":   stats.Claims,
		"policies": stats.Policies,
	}).Info("database ready")

	faqs, err := faq.Load(filepath.Join(cfg.Server.DataDir, faq.FileName))
	if err != nil {
		_ = repo.Close()
		return nil, nil, nil, fmt.Errorf("load faqs: %w", err)
	}
	log.Infof("loaded %d faq entries", faqs.Len())

	var phraser server.Phraser
	if cfg.LLM.Enabled() {
		client, err := llm.New(llm.OptionsFromConfig(cfg.LLM))
		if err != nil {
			log.Warnf("answer rephrasing disabled: %v", err)
		} else {
			phraser = client
			log.WithField("model", cfg.LLM.Model).Info("answer rephrasing enabled")
		}
	} else {
		log.Info("answer rephrasing disabled (OPENAI_API_KEY not set)")
	}
	return repo, faqs, phraser, nil
}

