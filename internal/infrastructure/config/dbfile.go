package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DBFileName is the JSON file holding the user-adjustable database
// connection parameters. It lives in the working directory, is read at
// startup, and is rewritten whenever the settings endpoint changes them.
const DBFileName = "db-config.json"

// DBFileConfig is the subset of connection parameters the settings dialog
// can change.
type DBFileConfig struct {
	Host     string `json:"host" validate:"required"`
	User     string `json:"user" validate:"required"`
	Password string `json:"password"`
	Port     int    `json:"port" validate:"required,min=1,max=65535"`
	Name     string `json:"name,omitempty"`
}

// DefaultDBFilePath returns the db-config file path in the current working
// directory.
func DefaultDBFilePath() string {
	wd, err := os.Getwd()
	if err != nil {
		return DBFileName
	}
	return filepath.Join(wd, DBFileName)
}

// LoadDBFile reads connection parameters from the given JSON file.
func LoadDBFile(path string) (*DBFileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read db config file: %w", err)
	}

	var cfg DBFileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse db config file: %w", err)
	}

	return &cfg, nil
}

// SaveDBFile writes connection parameters to the given JSON file, creating
// or truncating it.
func SaveDBFile(path string, cfg *DBFileConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode db config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write db config file: %w", err)
	}

	return nil
}

// ApplyFileConfig overlays the file-held connection parameters onto the
// database config. Pool sizing and SSL mode stay as configured by env.
func (cfg *DatabaseConfig) ApplyFileConfig(file *DBFileConfig) {
	if file == nil {
		return
	}
	cfg.Host = file.Host
	cfg.User = file.User
	cfg.Password = file.Password
	cfg.Port = file.Port
	if file.Name != "" {
		cfg.Name = file.Name
	}
}
