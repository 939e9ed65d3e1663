package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "CONFESS"

type AppConfig struct {
	Port      string
	GinMode   string
	FEOrigins []string

	DBUser string
	DBPass string
	DBHost string
	DBName string

	ReportThreshold int64
	LogLevel        string
}

// Load reads configuration from the environment. Variables use the
// CONFESS_ prefix except for the handful of legacy names bound below.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// legacy unprefixed names still honored by deployments
	_ = v.BindEnv("http.port", "PORT")
	_ = v.BindEnv("http.fe_origins", "FE_ORIGINS")
	_ = v.BindEnv("db.user", "DB_USER")
	_ = v.BindEnv("db.pass", "DB_PASS")
	_ = v.BindEnv("db.host", "DB_HOST")
	_ = v.BindEnv("db.name", "DB_NAME")

	v.SetDefault("http.port", "8080")
	v.SetDefault("http.gin_mode", "release")
	v.SetDefault("db.host", "localhost:3306")
	v.SetDefault("db.name", "confessions")
	v.SetDefault("moderation.report_threshold", 3)
	v.SetDefault("log.level", "info")

	cfg := &AppConfig{
		Port:            v.GetString("http.port"),
		GinMode:         v.GetString("http.gin_mode"),
		DBUser:          v.GetString("db.user"),
		DBPass:          v.GetString("db.pass"),
		DBHost:          v.GetString("db.host"),
		DBName:          v.GetString("db.name"),
		ReportThreshold: v.GetInt64("moderation.report_threshold"),
		LogLevel:        v.GetString("log.level"),
	}
	if origins := v.GetString("http.fe_origins"); origins != "" {
		cfg.FEOrigins = strings.Split(origins, ",")
	}

	if cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER must be set")
	}
	if cfg.ReportThreshold <= 0 {
		return nil, fmt.Errorf("report threshold must be positive, got %d", cfg.ReportThreshold)
	}
	return cfg, nil
}
