package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// PlannerConfig holds the raw planner options. They are resolved into
// portions.Rules by BuildRules.
type PlannerConfig struct {
	Preset          string // canonical | legacy
	RulesFile       string // optional YAML file
	SaladKcal       float64
	SaladKcalSet    bool
	PortionRounding string // half_even | half_away | truncate
	TotalRounding   string
	StrictInput     bool
	StrictInputSet  bool
}

// Config holds the application configuration.
type Config struct {
	Env      string // local | staging | production
	Port     int
	LogLevel string

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Request bodies
	MaxBodyKB int

	Planner PlannerConfig
}

// Load reads the configuration from environment variables.
func Load() *Config {
	// APP_ENV (fallback to ENV for backward compat, default: local)
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	// PORT (default: 8080)
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	// LOG_LEVEL (default: debug locally, info elsewhere)
	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "debug"
		if env != "local" {
			logLevel = "info"
		}
	}

	// ---------- CORS ----------
	corsOrigins := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	corsAllowCreds := os.Getenv("CORS_ALLOW_CREDENTIALS") == "1"

	// ---------- Rate Limiting ----------
	rateLimitRPS := envInt("RATE_LIMIT_RPS", 0)
	rateLimitBurst := envInt("RATE_LIMIT_BURST", 0)

	// MAX_BODY_KB bounds every POST body (default: 64).
	// EXPORT_MAX_BODY_KB is the older name and still honored.
	maxBodyKB := envInt("MAX_BODY_KB", envInt("EXPORT_MAX_BODY_KB", 64))
	if maxBodyKB <= 0 {
		maxBodyKB = 64
	}

	// ---------- Planner ----------
	preset := strings.ToLower(strings.TrimSpace(os.Getenv("PLAN_PRESET")))
	if preset == "" {
		preset = "canonical"
	}
	if preset != "canonical" && preset != "legacy" {
		log.Printf("WARNING: unknown PLAN_PRESET=%q, fallback to canonical", preset)
		preset = "canonical"
	}

	saladRaw := strings.TrimSpace(os.Getenv("PLAN_SALAD_KCAL"))
	var salad float64
	saladSet := false
	if saladRaw != "" {
		v, err := strconv.ParseFloat(saladRaw, 64)
		if err != nil || v < 0 {
			log.Printf("WARNING: invalid PLAN_SALAD_KCAL=%q, ignoring", saladRaw)
		} else {
			salad = v
			saladSet = true
		}
	}

	strictRaw := strings.TrimSpace(os.Getenv("PLAN_STRICT_INPUT"))

	planner := PlannerConfig{
		Preset:          preset,
		RulesFile:       strings.TrimSpace(os.Getenv("PLAN_RULES_FILE")),
		SaladKcal:       salad,
		SaladKcalSet:    saladSet,
		PortionRounding: parseRoundingEnv("PLAN_PORTION_ROUNDING"),
		TotalRounding:   parseRoundingEnv("PLAN_TOTAL_ROUNDING"),
		StrictInput:     parseBoolEnv("PLAN_STRICT_INPUT"),
		StrictInputSet:  strictRaw != "",
	}

	return &Config{
		Env:      env,
		Port:     port,
		LogLevel: logLevel,

		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: corsAllowCreds,

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,

		MaxBodyKB: maxBodyKB,

		Planner: planner,
	}
}

// IsProduction reports whether the service runs in a deployed environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "staging"
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:8501"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func parseRoundingEnv(key string) string {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch mode {
	case "":
		return ""
	case "half_even", "bankers", "half_away", "nearest", "truncate", "trunc":
		return mode
	default:
		log.Printf("WARNING: unknown %s=%q, using the preset default", key, mode)
		return ""
	}
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
