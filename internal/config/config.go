package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Application struct {
	Env       string `mapstructure:"env"        json:"env"`
	Host      string `mapstructure:"host"       json:"host"`
	SecretKey string `mapstructure:"secret_key" json:"-"`
	Port      int    `mapstructure:"port"       json:"port"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"-"`
	TimeZone       string `mapstructure:"timezone"        json:"timezone"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int    `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int    `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"-"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

type Inventory struct {
	EnforceStockFloor bool `mapstructure:"enforce_stock_floor" json:"enforce_stock_floor"`
}

type Client struct {
	BaseURL  string `mapstructure:"base_url"  json:"base_url"`
	Token    string `mapstructure:"token"     json:"-"`
	UserID   string `mapstructure:"user_id"   json:"user_id"`
	CartFile string `mapstructure:"cart_file" json:"cart_file"`
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Inventory   `mapstructure:"inventory"   json:"inventory"`
	Client      `mapstructure:"client"      json:"client"`
}

var (
	once   sync.Once
	config *Config
)

// Get reads ./env/<filename>.yaml once per process; later calls return the same Config.
func Get(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str("tag", "config Get").
			Str("process", "loading dotenv").
			Str("filename", filename).
			Logger()

		logger.Info().Msg("loading dotenv")
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("failed loading dotenv with error=%w", err)
			logger.Warn().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("loaded dotenv")

		v := viper.New()
		v.SetConfigName(filename)
		v.AddConfigPath("./env")
		v.SetConfigType("yaml")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		logger = logger.With().Str("process", "reading config").Logger()
		logger.Info().Msg("reading config")
		err = v.ReadInConfig()
		if notFound := (viper.ConfigFileNotFoundError{}); errors.As(err, &notFound) {
			err = fmt.Errorf("failed finding config with error=%w", err)
			logger.Warn().Err(err).Msg("config file not found, falling back to defaults")
		} else if err != nil {
			err = fmt.Errorf("failed reading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("read config")

		logger = logger.With().Str("process", "unmarshaling config").Logger()
		logger.Info().Msg("unmarshaling config")
		cfg := Config{}
		err = v.Unmarshal(&cfg)
		if err != nil {
			err = fmt.Errorf("failed unmarshaling config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger.Info().Any("config", cfg).Msg("unmarshaled config")
	})
	return config
}
