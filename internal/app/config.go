package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (SAGE_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	FrontendURL string `default:"" usage:"Storefront origin added to the CORS allow list" flag:"frontend-url"`
	Supabase    SupabaseConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// SupabaseConfig points the service at its hosted store and auth provider.
type SupabaseConfig struct {
	URL        string        `usage:"Project base URL (SAGE_SUPABASE_URL or SUPABASE_URL)" flag:"supabase-url"`
	AnonKey    string        `usage:"Public API key, used for auth delegation" flag:"supabase-anon-key"`
	ServiceKey string        `usage:"Privileged API key, used for data access" flag:"supabase-service-key"`
	Timeout    time.Duration `default:"10s" usage:"Per-call timeout for store and auth round trips"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"http://localhost:3000" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SAGE",
		Files:     []string{"config.yaml", "/etc/sage/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.Supabase.URL == "" {
		return nil, errors.New("supabase URL is required: set SAGE_SUPABASE_URL or SUPABASE_URL")
	}
	if cfg.Supabase.AnonKey == "" || cfg.Supabase.ServiceKey == "" {
		return nil, errors.New("supabase keys are required: set SUPABASE_ANON_KEY and SUPABASE_SERVICE_KEY")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names (SUPABASE_URL, PORT, FRONTEND_URL) to the application's
// SAGE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Supabase.URL == "" {
		c.Supabase.URL = os.Getenv("SUPABASE_URL")
	}
	if c.Supabase.AnonKey == "" {
		c.Supabase.AnonKey = os.Getenv("SUPABASE_ANON_KEY")
	}
	if c.Supabase.ServiceKey == "" {
		c.Supabase.ServiceKey = os.Getenv("SUPABASE_SERVICE_KEY")
	}
	if c.FrontendURL == "" {
		c.FrontendURL = os.Getenv("FRONTEND_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
