package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const minSecretLength = 32

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	Region     string
	PresignTTL time.Duration
}

type SecurityConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	CookieDomain  string
	CookieSecure  bool
}

type SimulatorConfig struct {
	Enabled  bool
	Schedule string
}

type DiseaseConfig struct {
	Stream   string
	Group    string
	Consumer string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Simulator        SimulatorConfig
	Disease          DiseaseConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("AGRISENSE")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Security.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate enforces the startup invariant on token secrets: both must be
// present and long enough before the process is allowed to serve traffic.
func (c SecurityConfig) Validate() error {
	if len(c.AccessSecret) < minSecretLength {
		return fmt.Errorf("security.accesssecret must be at least %d characters", minSecretLength)
	}
	if len(c.RefreshSecret) < minSecretLength {
		return fmt.Errorf("security.refreshsecret must be at least %d characters", minSecretLength)
	}
	if c.AccessSecret == c.RefreshSecret {
		return fmt.Errorf("security.accesssecret and security.refreshsecret must differ")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 4000)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.bucket", "agrisense-uploads")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.presignttl", "60s")

	v.SetDefault("security.accessttl", "15m")
	v.SetDefault("security.refreshttl", "168h") // 7 days
	v.SetDefault("security.cookiedomain", "localhost")
	v.SetDefault("security.cookiesecure", false)

	v.SetDefault("simulator.enabled", true)
	v.SetDefault("simulator.schedule", "0 */2 * * * *") // every 2 minutes

	v.SetDefault("disease.stream", "disease:reports")
	v.SetDefault("disease.group", "disease-workers")
	v.SetDefault("disease.consumer", "api-1")
}
