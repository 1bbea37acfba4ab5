package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"taskboard/logutils"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"

	// EnvConfigPath overrides the default config file location.
	EnvConfigPath = "TASKBOARD_CONFIG"

	envAccessSecret  = "TASKBOARD_ACCESS_TOKEN_SECRET"
	envRefreshSecret = "TASKBOARD_REFRESH_TOKEN_SECRET"

	defaultConfigPath = "./etc/config.yaml"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr" toml:"addr"`
		// gin mode: debug, release or test
		Mode string `yaml:"mode" toml:"mode"`
	} `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Auth     struct {
		AccessTokenSecret      string `yaml:"accessTokenSecret" toml:"accessTokenSecret"`
		RefreshTokenSecret     string `yaml:"refreshTokenSecret" toml:"refreshTokenSecret"`
		AccessTokenExpiryHour  int    `yaml:"accessTokenExpiryHour" toml:"accessTokenExpiryHour"`
		RefreshTokenExpiryHour int    `yaml:"refreshTokenExpiryHour" toml:"refreshTokenExpiryHour"`
	} `yaml:"auth" toml:"auth"`
	Log struct {
		Level string `yaml:"level" toml:"level"`
	} `yaml:"log" toml:"log"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver" toml:"driver"`
	Host     string `yaml:"host" toml:"host"`
	Port     string `yaml:"port" toml:"port"`
	DBName   string `yaml:"dbname" toml:"dbname"`
	User     string `yaml:"user" toml:"user"`
	Password string `yaml:"password" toml:"password"`
	SSLMode  string `yaml:"sslmode" toml:"sslmode"`
	TimeZone string `yaml:"TimeZone" toml:"TimeZone"`
	// Path is the database file for the sqlite driver
	Path         string `yaml:"path" toml:"path"`
	MaxIdleConns int    `yaml:"maxIdleConns" toml:"maxIdleConns"`
	MaxOpenConns int    `yaml:"maxOpenConns" toml:"maxOpenConns"`
}

var (
	once   sync.Once
	config *Config
	path   = defaultConfigPath
)

// SetPath changes the file read by GetConfig. It has no effect once GetConfig has been called.
func SetPath(p string) {
	if p != "" {
		path = p
	}
}

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

// Init loads the configuration on first use and returns it. p takes
// precedence over TASKBOARD_CONFIG and ./etc/config.yaml.
func Init(p string) (*Config, error) {
	SetPath(p)
	var err error
	once.Do(func() {
		config, err = Load(resolvePath())
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

func resolvePath() string {
	if path == defaultConfigPath {
		if env := os.Getenv(EnvConfigPath); env != "" {
			return env
		}
	}
	return path
}

func initConfig() *Config {
	cfg, err := Load(resolvePath())
	if err != nil {
		logutils.Log.Error("init config ", err)
		panic(err)
	}
	return cfg
}

// Load reads a YAML or TOML config file (chosen by extension) and returns a validated Config.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", filePath, err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(filePath), ".toml") {
		format = "toml"
	}
	return Parse(data, format)
}

// Parse decodes data in the given format ("yaml" or "toml").
func Parse(data []byte, format string) (*Config, error) {
	cfg := &Config{}
	switch format {
	case "toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("config: parse toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Port == "" {
			c.Database.Port = "5432"
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
		if c.Database.TimeZone == "" {
			c.Database.TimeZone = "UTC"
		}
	case DriverMySQL:
		if c.Database.Port == "" {
			c.Database.Port = "3306"
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			c.Database.Path = "data/taskboard.db"
		}
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Auth.AccessTokenExpiryHour == 0 {
		c.Auth.AccessTokenExpiryHour = 1
	}
	if c.Auth.RefreshTokenExpiryHour == 0 {
		c.Auth.RefreshTokenExpiryHour = 168
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envAccessSecret); v != "" {
		c.Auth.AccessTokenSecret = v
	}
	if v := os.Getenv(envRefreshSecret); v != "" {
		c.Auth.RefreshTokenSecret = v
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("config: database.host and database.dbname are required for %s", c.Database.Driver)
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	if c.Auth.AccessTokenSecret == "" {
		return fmt.Errorf("config: auth.accessTokenSecret is required")
	}
	if c.Auth.RefreshTokenSecret == "" {
		c.Auth.RefreshTokenSecret = c.Auth.AccessTokenSecret
	}
	if c.Auth.AccessTokenExpiryHour < 0 || c.Auth.RefreshTokenExpiryHour < 0 {
		return fmt.Errorf("config: token expiry must be positive")
	}
	return nil
}
