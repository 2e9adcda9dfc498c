package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Port            int    `mapstructure:"PORT"`
	Env             string `mapstructure:"ENV"`
	DataDir         string `mapstructure:"DATA_DIR"`
	MasterPassword  string `mapstructure:"MASTER_PASSWORD"`
	BackupEnabled   bool   `mapstructure:"BACKUP_ENABLED"`
	BackupFrequency string `mapstructure:"BACKUP_FREQUENCY"`
	BackupTime      string `mapstructure:"BACKUP_TIME"`
	BackupDir       string `mapstructure:"BACKUP_DIR"`
	MaxBackups      int    `mapstructure:"MAX_BACKUPS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", 47832)
	v.SetDefault("ENV", "development")
	v.SetDefault("BACKUP_ENABLED", true)
	v.SetDefault("BACKUP_FREQUENCY", "daily")
	v.SetDefault("BACKUP_TIME", "03:00")
	v.SetDefault("MAX_BACKUPS", 10)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATA_DIR")
	v.BindEnv("MASTER_PASSWORD")
	v.BindEnv("BACKUP_ENABLED")
	v.BindEnv("BACKUP_FREQUENCY")
	v.BindEnv("BACKUP_TIME")
	v.BindEnv("BACKUP_DIR")
	v.BindEnv("MAX_BACKUPS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve user config dir: %w", err)
		}
		cfg.DataDir = filepath.Join(base, "pflegedms")
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = filepath.Join(cfg.DataDir, "backups")
	}

	if cfg.MasterPassword == "" {
		return nil, fmt.Errorf("MASTER_PASSWORD is required")
	}
	if cfg.BackupFrequency != "daily" && cfg.BackupFrequency != "weekly" {
		return nil, fmt.Errorf("BACKUP_FREQUENCY must be daily or weekly, got %q", cfg.BackupFrequency)
	}

	return cfg, nil
}

// DatabasePath is the location of the encrypted store file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "pflegedms.db")
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}
