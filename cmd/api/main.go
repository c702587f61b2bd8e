package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/fdg312/portion-planner/internal/config"
	"github.com/fdg312/portion-planner/internal/httpserver"
	"github.com/fdg312/portion-planner/internal/logging"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL logger: %v", err)
	}
	defer logger.Sync()

	printStartupBanner(logger, cfg)
	validateProductionConfig(logger, cfg)

	server, err := httpserver.New(cfg, logger)
	if err != nil {
		logger.Fatal("FATAL planner config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}
}

// printStartupBanner logs a one-time summary of the resolved configuration.
func printStartupBanner(logger *zap.Logger, cfg *config.Config) {
	rules := plannerFields(cfg)
	logger.Info("portion planner api",
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Strings("cors_origins", cfg.CORSAllowedOrigins),
		zap.Int("rate_limit_rps", cfg.RateLimitRPS),
		zap.Int("rate_limit_burst", cfg.RateLimitBurst),
		zap.Int("max_body_kb", cfg.MaxBodyKB),
	)
	logger.Info("planner", rules...)
}

func plannerFields(cfg *config.Config) []zap.Field {
	pc := cfg.Planner
	fields := []zap.Field{
		zap.String("preset", nonEmptyOrDefault(pc.Preset, "canonical")),
		zap.String("rules_file", nonEmptyOrDefault(pc.RulesFile, "-")),
		zap.String("portion_rounding", nonEmptyOrDefault(pc.PortionRounding, "(preset)")),
		zap.String("total_rounding", nonEmptyOrDefault(pc.TotalRounding, "(preset)")),
	}
	if pc.SaladKcalSet {
		fields = append(fields, zap.Float64("salad_kcal", pc.SaladKcal))
	}
	if pc.StrictInputSet {
		fields = append(fields, zap.Bool("strict_input", pc.StrictInput))
	}
	return fields
}

// validateProductionConfig performs fatal checks that only matter in non-local envs.
func validateProductionConfig(logger *zap.Logger, cfg *config.Config) {
	if !cfg.IsProduction() {
		return
	}

	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" && cfg.CORSAllowCredentials {
			logger.Fatal(fmt.Sprintf("FATAL cors: wildcard origin with credentials is not allowed in %s", cfg.Env))
		}
		if strings.HasPrefix(origin, "http://localhost") {
			logger.Warn("cors origin points at localhost", zap.String("origin", origin), zap.String("env", cfg.Env))
		}
	}

	if cfg.RateLimitRPS <= 0 {
		logger.Warn("rate limiting disabled", zap.String("env", cfg.Env))
	}
}

func nonEmptyOrDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
