// Package config resolves the settings of a visiondb run from defaults, an
// optional YAML file, VISIONDB_* environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"visiondb/utils"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix is the prefix of the environment variables read
const EnvPrefix = "VISIONDB"

// DefaultConfigFile is read from the working directory when present
const DefaultConfigFile = "visiondb.yaml"

// Setting keys
const (
	KeyDataDir = "datadir"
	KeyJSONDir = "jsondir"
	KeyDBPath  = "dbpath"
	KeyReset   = "reset"
	KeyDebug   = "debug"
	KeyLogFile = "logfile"
	KeyShowSQL = "showsql"
)

// Settings holds the resolved configuration
type Settings struct {
	DataDir string `mapstructure:"datadir"`
	JSONDir string `mapstructure:"jsondir"`
	DBPath  string `mapstructure:"dbpath"`
	Reset   bool   `mapstructure:"reset"`
	Debug   bool   `mapstructure:"debug"`
	LogFile string `mapstructure:"logfile"`
	ShowSQL bool   `mapstructure:"showsql"`
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDataDir, utils.DefaultDataDir)
	v.SetDefault(KeyJSONDir, "")
	v.SetDefault(KeyDBPath, "")
	v.SetDefault(KeyReset, true)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogFile, utils.DefaultLogFile)
	v.SetDefault(KeyShowSQL, false)
}

// Load resolves the settings held by v. An explicit configFile must exist;
// without one, visiondb.yaml is read if the working directory has it.
// A .env file in the working directory is loaded into the environment first.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	_ = godotenv.Load()

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read config file %s: %w", ErrInvalidConfig, configFile, err)
		}
	} else if _, err := os.Stat(DefaultConfigFile); err == nil {
		v.SetConfigFile(DefaultConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read config file %s: %w", ErrInvalidConfig, DefaultConfigFile, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	s.resolvePaths()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// resolvePaths derives the JSON folder and database file from the data
// directory when they were not set explicitly
func (s *Settings) resolvePaths() {
	if s.DataDir == "" {
		s.DataDir = utils.DefaultDataDir
	}
	if s.JSONDir == "" {
		s.JSONDir = utils.GetDefaultJSONDir(s.DataDir)
	}
	if s.DBPath == "" {
		s.DBPath = utils.GetDefaultDatabasePath(s.DataDir)
	}
}

// Validate reports every problem with the settings at once
func (s *Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.JSONDir) == "" {
		errs = append(errs, fmt.Errorf("%w: json directory is empty", ErrInvalidConfig))
	}
	if strings.TrimSpace(s.DBPath) == "" {
		errs = append(errs, fmt.Errorf("%w: database path is empty", ErrInvalidConfig))
	}
	if s.Debug && strings.TrimSpace(s.LogFile) == "" {
		errs = append(errs, fmt.Errorf("%w: debug needs a log file", ErrInvalidConfig))
	}
	if s.JSONDir != "" && s.JSONDir == s.DBPath {
		errs = append(errs, fmt.Errorf("%w: json directory and database path are the same", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}
