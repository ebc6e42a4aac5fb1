package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/setavenger/ztransparent/internal/logging"
	"github.com/setavenger/ztransparent/internal/zcash"
)

// LoadConfigs reads the config file at pathToConfig and the environment into
// the package variables. A missing config file is not an error.
func LoadConfigs(pathToConfig string) error {
	v := viper.New()
	// Set the file name of the configurations file
	v.SetConfigFile(pathToConfig)
	v.SetConfigType("toml")

	// Handle errors reading the config file
	if err := v.ReadInConfig(); err != nil {
		logging.L.Warn().Err(err).Msg("No config file detected")
	}

	/* set defaults */
	v.SetDefault("network", Network.String())
	v.SetDefault("log_level", LogLevel)
	v.SetDefault("db_engine", DBEngine)
	v.SetDefault("http_host", HTTPHost)
	v.SetDefault("cache_size", CacheSize)
	v.SetDefault("no_sync", NoSync)

	// Bind viper keys to environment variables
	v.AutomaticEnv()
	v.BindEnv("network", "NETWORK")
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("db_engine", "DB_ENGINE")
	v.BindEnv("http_host", "HTTP_HOST")
	v.BindEnv("cache_size", "CACHE_SIZE")
	v.BindEnv("no_sync", "NO_SYNC")

	/* read and set config variables */
	LogLevel = v.GetString("log_level")
	HTTPHost = v.GetString("http_host")
	CacheSize = v.GetInt64("cache_size")
	NoSync = v.GetBool("no_sync")

	network, err := zcash.ParseNetwork(v.GetString("network"))
	if err != nil {
		return err
	}
	Network = network

	switch engine := strings.ToLower(v.GetString("db_engine")); engine {
	case EnginePebble, EngineLevelDB, EngineSQLite:
		DBEngine = engine
	default:
		return errors.Errorf("unknown db_engine %q", engine)
	}

	if CacheSize <= 0 {
		return errors.Errorf("cache_size must be positive, got %d", CacheSize)
	}

	logging.SetLogLevel(logging.ParseLevel(LogLevel))

	logging.L.Info().
		Str("network", Network.String()).
		Str("db_engine", DBEngine).
		Str("http_host", HTTPHost).
		Int64("cache_size", CacheSize).
		Bool("no_sync", NoSync).
		Msg("config loaded")
	return nil
}

// ResolvePath expands a leading ~ and makes path absolute.
func ResolvePath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			logging.L.Err(err).Msg("could not resolve home directory")
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
