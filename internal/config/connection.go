package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ConnectionFileName is the connection file, relative to the working directory.
const ConnectionFileName = "config.json"

// EnvPrefix prefixes every environment override, e.g. SOQL_DOMAIN.
const EnvPrefix = "SOQL"

// Connection keys in the config file
const (
	KeyUsername = "username"
	KeyPassword = "password"
	KeyDomain   = "domain"
	KeyDataset  = "dataset"
	KeyQuery    = "query"
)

// Connection is the last used connection and query.
type Connection struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Domain   string `mapstructure:"domain"`
	Dataset  string `mapstructure:"dataset"`
	Query    string `mapstructure:"query"`
}

// Store reads and writes the connection file.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore creates a store for path. An empty path uses ConnectionFileName.
func NewStore(path string, logger *zap.Logger) *Store {
	if path == "" {
		path = ConnectionFileName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the connection file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the connection file. A missing or malformed file yields empty
// values; environment overrides apply either way.
func (s *Store) Load() Connection {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{KeyUsername, KeyPassword, KeyDomain, KeyDataset, KeyQuery} {
		v.SetDefault(key, "")
	}

	if err := v.ReadInConfig(); err != nil {
		s.logger.Debug("connection file not loaded, using defaults", zap.String("path", s.path), zap.Error(err))
	}

	var conn Connection
	if err := v.Unmarshal(&conn); err != nil {
		s.logger.Warn("connection file malformed, using defaults", zap.String("path", s.path), zap.Error(err))
		return Connection{}
	}
	return conn
}

// Save overwrites the connection file with conn
func (s *Store) Save(conn Connection) error {
	v := viper.New()
	v.SetConfigType("json")
	v.Set(KeyUsername, conn.Username)
	v.Set(KeyPassword, conn.Password)
	v.Set(KeyDomain, conn.Domain)
	v.Set(KeyDataset, conn.Dataset)
	v.Set(KeyQuery, conn.Query)

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write connection file: %w", err)
	}
	return nil
}
