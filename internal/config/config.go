package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Database struct {
	WriteDSN          string        `mapstructure:"write_dsn"`
	ReadDSN           string        `mapstructure:"read_dsn"`
	Host              string        `mapstructure:"host"`
	ReadHost          string        `mapstructure:"read_host"`
	Port              int           `mapstructure:"port"`
	Name              string        `mapstructure:"name"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	SSLMode           string        `mapstructure:"sslmode"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	SlowQuery         time.Duration `mapstructure:"slow_query"`
}

type Config struct {
	Database Database `mapstructure:"database"`
	Server   Server   `mapstructure:"server"`
	Log      Log      `mapstructure:"log"`
	Audit    Audit    `mapstructure:"audit"`
	NATS     NATS     `mapstructure:"nats"`
	Relay    Relay    `mapstructure:"relay"`
	Env      string   `mapstructure:"environment"`
}

type Server struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Audit tunes the read side of the audit subsystem. None of these values
// affect what the capture triggers record.
type Audit struct {
	DefaultLimit    int           `mapstructure:"default_limit"`
	MaxLimit        int           `mapstructure:"max_limit"`
	RecentCount     int           `mapstructure:"recent_count"`
	LivenessWindow  time.Duration `mapstructure:"liveness_window"`
	SelfTestTimeout time.Duration `mapstructure:"self_test_timeout"`
	InstallOnStart  bool          `mapstructure:"install_on_start"`
	ProbeSchedule   string        `mapstructure:"probe_schedule"`
	SelfTestActorID int64         `mapstructure:"self_test_actor_id"`
	ActorHeader     string        `mapstructure:"actor_header"`
}

type NATS struct {
	URL     string `mapstructure:"url"`
	Stream  string `mapstructure:"stream"`
	Subject string `mapstructure:"subject"`
}

type Relay struct {
	Name         string        `mapstructure:"name"`
	BatchSize    int           `mapstructure:"batch_size"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	SettleDelay  time.Duration `mapstructure:"settle_delay"`
	// MaxTxAge is how long an id gap may stay open before the relay assumes
	// the transaction holding it rolled back and moves past it.
	MaxTxAge time.Duration `mapstructure:"max_tx_age"`
}

func Load(cfgFile string) (Config, error) {
	// .env is optional; real environment variables always win.
	_ = godotenv.Load()

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.audit-trail")
		v.AddConfigPath("/etc/audit-trail")
	}

	v.SetEnvPrefix("AUDIT_TRAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.user", "DB_USER")
	_ = v.BindEnv("database.password", "DB_PASS")
	_ = v.BindEnv("database.write_dsn", "DATABASE_URL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	cfg = applyDSNDefaults(cfg)
	cfg = applyAuditDefaults(cfg)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.connect_timeout", "5s")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("database.max_conn_idle_time", "5m")
	v.SetDefault("database.health_check_period", "1m")
	v.SetDefault("database.slow_query", "200ms")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("audit.default_limit", 20)
	v.SetDefault("audit.max_limit", 200)
	v.SetDefault("audit.recent_count", 5)
	v.SetDefault("audit.liveness_window", "24h")
	v.SetDefault("audit.self_test_timeout", "10s")
	v.SetDefault("audit.install_on_start", false)
	v.SetDefault("audit.probe_schedule", "@every 5m")
	v.SetDefault("audit.actor_header", "X-Actor-ID")
	v.SetDefault("nats.stream", "audit")
	v.SetDefault("nats.subject", "audit")
	v.SetDefault("relay.name", "nats")
	v.SetDefault("relay.batch_size", 100)
	v.SetDefault("relay.poll_interval", "2s")
	v.SetDefault("relay.settle_delay", "5s")
	v.SetDefault("relay.max_tx_age", "2m")
	v.SetDefault("environment", "dev")
}

func applyDSNDefaults(cfg Config) Config {
	if cfg.Database.WriteDSN == "" && cfg.Database.Host != "" && cfg.Database.Name != "" {
		cfg.Database.WriteDSN = buildDSN(cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, cfg.Database.User, cfg.Database.Password, cfg.Database.SSLMode)
	}
	if cfg.Database.ReadDSN == "" {
		readHost := cfg.Database.ReadHost
		if readHost == "" {
			readHost = cfg.Database.Host
		}
		if readHost != "" && cfg.Database.Name != "" {
			cfg.Database.ReadDSN = buildDSN(readHost, cfg.Database.Port, cfg.Database.Name, cfg.Database.User, cfg.Database.Password, cfg.Database.SSLMode)
		}
	}
	return cfg
}

func applyAuditDefaults(cfg Config) Config {
	if cfg.Audit.DefaultLimit <= 0 {
		cfg.Audit.DefaultLimit = 20
	}
	if cfg.Audit.MaxLimit < cfg.Audit.DefaultLimit {
		cfg.Audit.MaxLimit = cfg.Audit.DefaultLimit
	}
	if cfg.Audit.RecentCount <= 0 {
		cfg.Audit.RecentCount = 5
	}
	if cfg.Audit.LivenessWindow <= 0 {
		cfg.Audit.LivenessWindow = 24 * time.Hour
	}
	return cfg
}

func buildDSN(host string, port int, name, user, password, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	creds := ""
	if user != "" {
		creds = user
		if password != "" {
			creds += ":" + password
		}
		creds += "@"
	}
	return "postgres://" + creds + host + ":" + fmt.Sprintf("%d", port) + "/" + name + "?sslmode=" + sslmode
}
