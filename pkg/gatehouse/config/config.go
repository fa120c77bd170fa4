// Package config provides configuration management for gatehouse using
// [Viper] for flexible configuration sources.
//
// Configuration can be provided via:
//   - YAML configuration files
//   - Environment variables with the GATEHOUSE_ prefix
//   - Programmatic defaults
//
// # Configuration File
//
// By default gatehouse looks for gatehouse-config.yaml in the current
// directory. Override the location using environment variables:
//
//	GATEHOUSE_CONFIG_PATH=/etc/gatehouse
//	GATEHOUSE_CONFIG_FILENAME=production-config
//
// Example configuration file:
//
//	log:
//	  level: ".:info"
//	storage:
//	  url: "file:/var/lib/gatehouse"
//
// # Environment Variables
//
// All configuration keys can be set via environment variables with the
// GATEHOUSE_ prefix. Dots in key names become underscores:
//
//	GATEHOUSE_LOG_LEVEL=.:debug
//	GATEHOUSE_STORAGE_URL=etcd:http://localhost:2379
//
// GATESTORAGE is recognized directly, without the GATEHOUSE_ prefix, as a
// convenience alias for storage.url, since it is the one setting every
// deployment must provide.
//
// [Viper]: https://github.com/spf13/viper
package config

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/diggyk/gatehouse/internal/logging"
	"github.com/spf13/viper"
)

// Environment variable and default path constants for configuration loading.
const (
	// EnvVarPrefix is the prefix for all gatehouse environment variables.
	// For example, the key "log.level" becomes GATEHOUSE_LOG_LEVEL.
	EnvVarPrefix string = "GATEHOUSE"

	// ConfigPathEnv is the environment variable that specifies the directory
	// containing the configuration file.
	ConfigPathEnv string = "GATEHOUSE_CONFIG_PATH"

	// ConfigFileNameEnv is the environment variable that specifies the
	// configuration file name (without extension).
	ConfigFileNameEnv string = "GATEHOUSE_CONFIG_FILENAME"

	// ConfigDefaultPath is the default directory to search for config files.
	ConfigDefaultPath string = "."

	// ConfigDefaultFilename is the default configuration file name (without extension).
	ConfigDefaultFilename string = "gatehouse-config"

	// StorageURLEnv is the bare, unprefixed environment variable recognized
	// for the storage backend URL (file:{path} or etcd:{url}).
	StorageURLEnv string = "GATESTORAGE"
)

// Configuration key constants for use with [VConfig].
const (
	logLevel string = "log.level"

	// StorageURL selects the storage driver and its location, of the form
	// "file:{path}" or "etcd:{url}".
	//
	// Default: "file:/tmp/gatehouse"
	// Set via environment: GATESTORAGE=etcd:http://localhost:2379
	StorageURL string = "storage.url"

	// ListenAddr is the address the generic HTTP decision point listens on.
	//
	// Default: ":8080"
	// Set via environment: GATEHOUSE_LISTEN_ADDR=:9090
	ListenAddr string = "listen.addr"
)

var (
	once     sync.Once
	loadOnce sync.Once
	loadErr  error

	// VConfig is the global Viper configuration instance for gatehouse.
	//
	// VConfig provides access to all configuration values. Use the
	// configuration key constants ([StorageURL], [ListenAddr], etc.) to
	// access specific settings:
	//
	//	url := config.VConfig.GetString(config.StorageURL)
	//
	// VConfig is initialized automatically when [Load] or [Init] is called.
	VConfig *viper.Viper
	logger  = logging.GetLogger("gatehouse.config")
)

// Init initializes the configuration system without loading config files.
//
// Init sets up Viper with configuration file paths and names, environment
// variable handling (GATEHOUSE_ prefix), and default values for all
// configuration keys. It is safe to call multiple times; subsequent calls
// are no-ops.
func Init() {
	once.Do(func() {
		doInitialize()
	})
}

func getConfigPath() string {
	configPath, ok := os.LookupEnv(ConfigPathEnv)
	if ok {
		return configPath
	}

	return ConfigDefaultPath
}

func getConfigFileName() string {
	configName, ok := os.LookupEnv(ConfigFileNameEnv)
	if ok {
		return configName
	}

	return ConfigDefaultFilename
}

func doInitialize() {
	VConfig = viper.New()

	// set up config-file loading: default is './gatehouse-config.yaml' but
	// can be overridden with $(GATEHOUSE_CONFIG_PATH)/$(GATEHOUSE_CONFIG_FILENAME).yaml
	VConfig.AddConfigPath(getConfigPath())
	VConfig.SetConfigName(getConfigFileName())
	VConfig.SetConfigType("yaml")

	// set up envvar handling: keys such as 'log.level' become 'GATEHOUSE_LOG_LEVEL'
	VConfig.SetEnvPrefix(EnvVarPrefix)
	VConfig.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	VConfig.AutomaticEnv()

	// set up VConfig defaults
	VConfig.SetDefault(logLevel, ".:info")
	VConfig.SetDefault(StorageURL, "file:/tmp/gatehouse")
	VConfig.SetDefault(ListenAddr, ":8080")

	// GATESTORAGE is a bare alias for storage.url, bound explicitly since
	// it doesn't carry the GATEHOUSE_ prefix.
	if v, ok := os.LookupEnv(StorageURLEnv); ok {
		VConfig.SetDefault(StorageURL, v)
	}
}

// Load initializes configuration and loads settings from files and
// environment.
//
// Load performs the following steps:
//  1. Calls [Init] if not already called
//  2. Reads the configuration file (if present; missing files are not an error)
//  3. Applies environment variable overrides
//  4. Updates log levels based on configuration
//
// This function is safe to call concurrently from multiple goroutines.
// Subsequent calls after the first successful load are no-ops that return
// nil. An unrecognized log level falls back to info rather than producing
// an error.
func Load() error {
	loadOnce.Do(func() {
		Init()

		// Early log level update from environment variable allows us to
		// debug the config loading itself.
		earlyLoglevel := os.Getenv("GATEHOUSE_LOG_LEVEL")
		if earlyLoglevel != "" {
			if err := logging.UpdateLogLevels(earlyLoglevel); err != nil {
				logger.SysErrorf("Failed updating early log level %s: %+v", earlyLoglevel, err)
				loadErr = err
				return
			}
		}

		logger.SysDebugf("Loading configuration from %s/%s.yaml", getConfigPath(), getConfigFileName())
		err := VConfig.ReadInConfig()
		if err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				logger.SysWarnf("error reading config; using defaults: %+v", err)
			}
			logger.SysDebugf("No config file found at %s/%s.yaml", getConfigPath(), getConfigFileName())
		}

		loglevel := VConfig.GetString(logLevel)
		if err := logging.UpdateLogLevels(loglevel); err != nil {
			logger.SysErrorf("Failed updating log level %s: %+v", loglevel, err)
			loadErr = err
			return
		}

		if logger.IsDebugEnabled() {
			VConfig.DebugTo(logger.Out())
		}
	})

	return loadErr
}

// ResetConfig clears all configuration and reinitializes with defaults.
//
// WARNING: This function is intended for testing only. It resets the
// global configuration state, which can cause race conditions in
// concurrent code.
func ResetConfig() {
	VConfig = nil
	once = sync.Once{}
	loadOnce = sync.Once{}
	loadErr = nil
	Init()
	_ = Load()
}
