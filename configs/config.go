package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	// Optional: orders live in memory when the DSN is empty.
	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	// Optional: the status cache is skipped when the addr is empty.
	Redis struct {
		Addr     string        `koanf:"addr"`
		Password string        `koanf:"password"`
		TTL      time.Duration `koanf:"ttl"`
	} `koanf:"redis"`

	// Optional: order events are not published when the URL is empty.
	Rabbit struct {
		URL string `koanf:"url"`
	} `koanf:"rabbitmq"`

	// Optional: the fulfilment status feed is skipped without brokers.
	Kafka struct {
		Brokers     []string `koanf:"brokers"`
		StatusTopic string   `koanf:"status_topic"`
		GroupID     string   `koanf:"group_id"`
	} `koanf:"kafka"`

	Security struct {
		JWTSecret string        `koanf:"jwt_secret"`
		Issuer    string        `koanf:"issuer"`
		Audience  string        `koanf:"audience"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"security"`

	Mpesa struct {
		GatewayURL string        `koanf:"gateway_url"`
		Timeout    time.Duration `koanf:"timeout"`
		// Sandbox cap sent to the gateway instead of the real subtotal;
		// zero disables it. The order total is never affected.
		SandboxAmount float64 `koanf:"sandbox_amount"`
	} `koanf:"mpesa"`

	Daraja struct {
		Env            string `koanf:"env"`
		ConsumerKey    string `koanf:"consumer_key"`
		ConsumerSecret string `koanf:"consumer_secret"`
		Shortcode      string `koanf:"shortcode"`
		Passkey        string `koanf:"passkey"`
		CallbackURL    string `koanf:"callback_url"`
	} `koanf:"daraja"`

	Checkout struct {
		ConfirmDelay time.Duration `koanf:"confirm_delay"`
	} `koanf:"checkout"`

	Lifecycle struct {
		ProcessingAfter time.Duration `koanf:"processing_after"`
		ShippedAfter    time.Duration `koanf:"shipped_after"`
	} `koanf:"lifecycle"`

	Catalog struct {
		SeedFile string `koanf:"seed_file"`
	} `koanf:"catalog"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix SHOPAPI_, nested with __)
	// e.g. SHOPAPI_MYSQL__DSN, SHOPAPI_DARAJA__PASSKEY
	if err := k.Load(env.Provider("SHOPAPI_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "SHOPAPI_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.Mpesa.GatewayURL == "" {
		return fmt.Errorf("mpesa.gateway_url required")
	}
	if c.Checkout.ConfirmDelay <= 0 {
		return fmt.Errorf("checkout.confirm_delay must be positive")
	}
	if c.Lifecycle.ProcessingAfter <= 0 || c.Lifecycle.ShippedAfter <= c.Lifecycle.ProcessingAfter {
		return fmt.Errorf("lifecycle delays must be positive with shipped_after > processing_after")
	}
	return nil
}
