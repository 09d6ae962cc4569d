package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/mubas-somase/voting-backend/pkg/env"
)

type Config struct {
	Mode       string     `yaml:"mode" env:"MODE" env-default:"dev"`
	LogPath    string     `yaml:"log_path" env:"LOG_PATH"`
	HTTP       HTTP       `yaml:"http"`
	Postgres   Postgres   `yaml:"postgres"`
	SMTP       SMTP       `yaml:"smtp"`
	S3         S3         `yaml:"s3"`
	Activation Activation `yaml:"activation"`
	Auth       Auth       `yaml:"auth"`
	Redis      Redis      `yaml:"redis"`
	OTel       OTel       `yaml:"otel"`
}

type HTTP struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
	// AllowedOrigins is a comma separated list. Empty means the frontend URL.
	AllowedOrigins []string `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:","`
	// TrustedProxies lists the IPs or CIDRs of reverse proxies whose
	// X-Forwarded-For header is believed. Empty trusts nobody.
	TrustedProxies []string `yaml:"trusted_proxies" env:"HTTP_TRUSTED_PROXIES" env-separator:","`
}

type Postgres struct {
	DSN string `yaml:"dsn" env:"PG_DSN" env-required:"true"`
}

type SMTP struct {
	Host     string        `yaml:"host" env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	Port     int           `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string        `yaml:"username" env:"SMTP_USERNAME"`
	Password string        `yaml:"password" env:"SMTP_PASSWORD"`
	From     string        `yaml:"from" env:"SMTP_FROM"`
	UseTLS   bool          `yaml:"use_tls" env:"SMTP_USE_TLS" env-default:"true"`
	Timeout  time.Duration `yaml:"timeout" env:"SMTP_TIMEOUT" env-default:"15s"`
}

type S3 struct {
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT" env-required:"true"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY" env-required:"true"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY" env-required:"true"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET" env-default:"somase"`
	Region    string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	// PublicURL prefixes stored keys in photo URLs. Defaults to <endpoint>/<bucket>.
	PublicURL string `yaml:"public_url" env:"S3_PUBLIC_URL"`
}

type Activation struct {
	Secret      string        `yaml:"secret" env:"ACTIVATION_SECRET" env-required:"true"`
	TTL         time.Duration `yaml:"ttl" env:"ACTIVATION_TTL" env-default:"24h"`
	FrontendURL string        `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:3000"`
}

type Auth struct {
	SessionSecret string `yaml:"session_secret" env:"SESSION_SECRET" env-required:"true"`
}

type Redis struct {
	// URL enables the shared rate limiter, e.g. redis://localhost:6379/0.
	// Without it limits are tracked per process.
	URL           string        `yaml:"url" env:"REDIS_URL"`
	RegisterLimit int           `yaml:"register_limit" env:"RATE_LIMIT_REGISTER" env-default:"10"`
	ApplyLimit    int           `yaml:"apply_limit" env:"RATE_LIMIT_APPLY" env-default:"10"`
	Window        time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1m"`
}

type OTel struct {
	// Endpoint turns on OTLP export of traces, metrics and logs.
	Endpoint string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads the YAML file at CONFIG_PATH when set, otherwise the environment.
// Environment variables override values from the file.
func Load() (*Config, error) {
	var (
		cfg Config
		err error
	)
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	var errs []error
	// env-required only checks presence, so blank values are caught here.
	for _, f := range []struct{ name, val string }{
		{"PG_DSN", c.Postgres.DSN},
		{"S3_ENDPOINT", c.S3.Endpoint},
		{"S3_ACCESS_KEY", c.S3.AccessKey},
		{"S3_SECRET_KEY", c.S3.SecretKey},
		{"ACTIVATION_SECRET", c.Activation.Secret},
		{"SESSION_SECRET", c.Auth.SessionSecret},
	} {
		if strings.TrimSpace(f.val) == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", f.name))
		}
	}
	if _, err := env.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("smtp.port %d out of range", c.SMTP.Port))
	}
	if c.Activation.TTL <= 0 {
		errs = append(errs, errors.New("activation.ttl must be positive"))
	}
	if c.Redis.Window <= 0 {
		errs = append(errs, errors.New("redis.window must be positive"))
	}
	if _, err := c.TrustedProxies(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TrustedProxies parses http.trusted_proxies. A bare IP becomes a single
// address prefix.
func (c *Config) TrustedProxies() ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, raw := range c.HTTP.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("http.trusted_proxies: %w", err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("http.trusted_proxies: %w", err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (c *Config) EnvMode() env.Mode {
	m, _ := env.ParseMode(c.Mode)
	return m
}

// Origins returns the CORS allow list.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range c.HTTP.AllowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{c.FrontendURL()}
	}
	return origins
}

func (c *Config) FrontendURL() string {
	return strings.TrimRight(c.Activation.FrontendURL, "/")
}

func (c *Config) PhotoBaseURL() string {
	if c.S3.PublicURL != "" {
		return strings.TrimRight(c.S3.PublicURL, "/")
	}
	return strings.TrimRight(c.S3.Endpoint, "/") + "/" + c.S3.Bucket
}

func (c *Config) SMTPFrom() string {
	if c.SMTP.From != "" {
		return c.SMTP.From
	}
	return c.SMTP.Username
}
