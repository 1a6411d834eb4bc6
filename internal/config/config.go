package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Game     GameConfig     `mapstructure:"game"`
}

type AppConfig struct {
	Name       string `mapstructure:"name"`
	LogLevel   string `mapstructure:"log_level"`
	HealthAddr string `mapstructure:"health_addr"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	WorkerCount   int           `mapstructure:"worker_count"`
	BufferSize    int           `mapstructure:"buffer_size"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type HTTPConfig struct {
	Addr           string   `mapstructure:"addr"`
	Mode           string   `mapstructure:"mode"` // gin 运行模式
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expire time.Duration `mapstructure:"expire"`
	Issuer string        `mapstructure:"issuer"`
}

type GameConfig struct {
	BotDelay       time.Duration `mapstructure:"bot_delay"`
	RiichiDelay    time.Duration `mapstructure:"riichi_delay"`
	NextRoundDelay time.Duration `mapstructure:"next_round_delay"`
	AutoDraw       bool          `mapstructure:"auto_draw"`
	TickInterval   time.Duration `mapstructure:"tick_interval"`
	WheelSlots     int           `mapstructure:"wheel_slots"`
	WorkerCount    int           `mapstructure:"worker_count"`
	EvictTimeout   time.Duration `mapstructure:"evict_timeout"`
	EvictInterval  time.Duration `mapstructure:"evict_interval"`
	InviteTTL      time.Duration `mapstructure:"invite_ttl"`
}

// EnvPrefix 环境变量前缀，例如 MAHJONG_REDIS_HOST
const EnvPrefix = "MAHJONG"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mahjong")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.health_addr", ":8081")

	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", 2*time.Second)
	v.SetDefault("nats.worker_count", 32)
	v.SetDefault("nats.buffer_size", 4096)

	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "mahjong")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.mode", "release")
	v.SetDefault("http.allowed_origins", []string{"*"})

	v.SetDefault("jwt.expire", 24*time.Hour)
	v.SetDefault("jwt.issuer", "mahjong")

	v.SetDefault("game.bot_delay", 800*time.Millisecond)
	v.SetDefault("game.riichi_delay", 800*time.Millisecond)
	v.SetDefault("game.next_round_delay", 8*time.Second)
	v.SetDefault("game.auto_draw", true)
	v.SetDefault("game.tick_interval", 100*time.Millisecond)
	v.SetDefault("game.wheel_slots", 60)
	v.SetDefault("game.worker_count", 8)
	v.SetDefault("game.evict_timeout", 2*time.Hour)
	v.SetDefault("game.evict_interval", time.Minute)
	v.SetDefault("game.invite_ttl", 5*time.Minute)
}

// Load 从指定路径加载配置，环境变量优先
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
