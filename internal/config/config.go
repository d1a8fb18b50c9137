package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	OrderAscending  = "asc"
	OrderDescending = "desc"
)

type Config struct {
	LogLevel  string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort  string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	BoardSize int     `yaml:"board-size" env:"BOARD_SIZE" env-default:"4"`
	MoveOrder string  `yaml:"move-order" env:"MOVE_ORDER" env-default:"desc"`
	Session   Session `yaml:"session"`
	Redis     Redis   `yaml:"redis"`
}

type Session struct {
	Store         string        `yaml:"store" env:"SESSION_STORE" env-default:"memory"`
	TTL           time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	SweepInterval time.Duration `yaml:"sweep-interval" env:"SESSION_SWEEP_INTERVAL" env-default:"10m"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - loads config.yml at path, or only the environment when the file does not exist.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}

		return config, nil
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return config, nil
}

// SortDescending reports whether move lists start newest-first.
func (that *Config) SortDescending() bool {
	return that.MoveOrder != OrderAscending
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
