package config

import (
	"reflect"
	"strings"

	"datadiff/core/database"
	"datadiff/core/logger"
	"datadiff/core/server"
	"datadiff/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the SQL database connection.
	Database database.Config `mapstructure:"database"`
	// Postgres holds configuration for Postgres dataset sources.
	Postgres PostgresConfig `mapstructure:"postgres"`
	// Compare holds defaults for comparison runs.
	Compare CompareConfig `mapstructure:"compare"`
}

// PostgresConfig holds the connection string for pg: sources.
type PostgresConfig struct {
	// DSN is a libpq-style URL or keyword/value connection string.
	DSN string `mapstructure:"dsn" default:""`
}

// CompareConfig holds defaults for comparison runs.
type CompareConfig struct {
	// Workers bounds the value diff workers. Zero means one per CPU.
	Workers int `mapstructure:"workers" default:"0"`
	// CacheTTLSeconds keeps loaded datasets between API requests. Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"300"`
	// ReportPrefix is the object prefix for reports written by the storage sink.
	ReportPrefix string `mapstructure:"report_prefix" default:"reports"`
	// SinkTable is the table written by the database sink.
	SinkTable string `mapstructure:"sink_table" default:"diff_records"`
	// LabelA and LabelB are used when a run does not name its datasets.
	LabelA string `mapstructure:"label_a" default:""`
	LabelB string `mapstructure:"label_b" default:""`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. COMPARE_WORKERS -> compare.workers)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
