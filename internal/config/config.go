package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPAddr   string    `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	SQLitePath string    `yaml:"sqlite-path" env:"SQLITE_PATH" env-default:"./master.db"`
	Game       Game      `yaml:"game"`
	Redis      Redis     `yaml:"redis"`
	Auth       Auth      `yaml:"auth"`
	Telemetry  Telemetry `yaml:"telemetry"`
}

type Game struct {
	// ComputerDelay paces the computer's reply. Zero or unset uses 500ms, a
	// negative value such as "-1ns" replies immediately.
	ComputerDelay  time.Duration `yaml:"computer-delay" env:"COMPUTER_DELAY" env-default:"500ms"`
	SessionIdleTTL time.Duration `yaml:"session-idle-ttl" env:"SESSION_IDLE_TTL" env-default:"30m"`
}

// Redis is optional; an empty Addr keeps the event bus in process.
type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_CONNSTRING"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt-secret" env:"JWT_SECRET" env-default:"my_super_secret_key"`
	TokenTTL  time.Duration `yaml:"token-ttl" env:"TOKEN_TTL" env-default:"72h"`
}

type Telemetry struct {
	Enabled     bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	Endpoint    string `yaml:"endpoint" env:"OTEL_COLLECTOR" env-default:"otel-collector:4317"`
	Stdout      bool   `yaml:"stdout" env:"OTEL_STDOUT" env-default:"false"`
	ServiceName string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tic-tac-toe-solo"`
}

// Load reads the YAML file at path, if any, then applies environment variables.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from env: %w", err)
		}
		return config, nil
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}
	return config, nil
}

// MustLoad - load all configurations, panicking on error.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

// RedisEnabled reports whether the Redis event bus should be used.
func (that *Config) RedisEnabled() bool {
	return that.Redis.Addr != ""
}
