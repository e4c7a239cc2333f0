package config

import (
	"errors"
	"os"
	"sync"

	"github.com/knadh/koanf/v2"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	_k      *koanf.Koanf
	_config *Config
	once    sync.Once
)

func GetConfig() *Config {
	if _config == nil {
		log.Info().Msg("config is nil trying to init")
		if err := InitConfig(); err != nil {
			log.Error().Msgf("error initializing config: %v", err)
		}
	}

	return _config
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func InitConfig() error {
	var err error
	once.Do(func() {
		_k = koanf.New(".")

		_config = &Config{}
		emptyConfig := &Config{}

		configFile := GetEnv("CONFIG_FILE", ".env.toml")

		if err := _k.Load(file.Provider(""+configFile), toml.Parser()); err != nil {
			log.Error().Msgf("error loading config [TOML]: %v", err)
		}

		_k.Load(file.Provider(".env"), dotenv.Parser())

		if _err := defaults.Set(_config); _err != nil {
			err = _err
			return
		}

		_k.Unmarshal("", _config)

		log.Trace().Msgf("k: %+v", _config)

		if _config == emptyConfig {
			err = errors.New("config is empty")
			return
		}

		if _err := validator.New().Struct(_config); _err != nil {
			err = _err
			return
		}

		zerolog.SetGlobalLevel(_config.APP.LogLevel)
	})

	return err
}

func IsDevMode() bool {
	if _config == nil {
		return true
	}

	return (_config.APP.Environment == "development")
}

// LogLevel returns the configured level; before any config is loaded it
// falls back to debug so early startup messages are not lost.
func LogLevel() zerolog.Level {
	if _config == nil {
		return zerolog.DebugLevel
	}
	return _config.APP.LogLevel
}

// SetConfig replaces the process-wide configuration. Tests use it to inject
// short delays without touching the filesystem.
func SetConfig(c *Config) {
	_config = c
}
