package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	MongoURI                string
	Port                    string
	DBName                  string
	ContactsCollection      string
	ImportHistoryCollection string
	StorageDriver           string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration

	// Import limits
	ImportMaxBytes         int64
	ImportMaxRows          int
	ImportDefaultBatchSize int
	ImportFlushConcurrency int
	MaxContactsPerUser     int

	LogLevel  string
	LogFormat string
}

// LoadEnvFiles loads the files that exist, leaving variables already set in
// the environment untouched. It returns how many files were loaded.
func LoadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func LoadConfig() (*Config, error) {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	readTimeout := getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second)
	writeTimeout := getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second)

	cfg := &Config{
		MongoURI:                mongoURI,
		Port:                    port,
		DBName:                  getEnv("DB_NAME", "crm"),
		ContactsCollection:      getEnv("COLLECTION_CONTACTS", "contacts"),
		ImportHistoryCollection: getEnv("COLLECTION_IMPORT_HISTORY", "contact_import_history"),
		StorageDriver:           strings.ToLower(getEnv("STORAGE_DRIVER", StorageMongo)),
		ReadTimeout:             readTimeout,
		WriteTimeout:            writeTimeout,
		ImportMaxBytes:          int64(getEnvInt("IMPORT_MAX_BYTES", 5<<20)),
		ImportMaxRows:           getEnvInt("IMPORT_MAX_ROWS", 1000),
		ImportDefaultBatchSize:  getEnvInt("IMPORT_DEFAULT_BATCH_SIZE", 50),
		ImportFlushConcurrency:  getEnvInt("IMPORT_FLUSH_CONCURRENCY", 4),
		MaxContactsPerUser:      getEnvInt("MAX_CONTACTS_PER_USER", 10000),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.StorageDriver != StorageMongo && c.StorageDriver != StorageMemory {
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q", StorageMongo, StorageMemory))
	}
	if c.StorageDriver == StorageMongo && c.MongoURI == "" {
		errs = append(errs, fmt.Errorf("MONGO_URI is required"))
	}
	if c.ImportMaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("IMPORT_MAX_BYTES must be positive"))
	}
	if c.ImportMaxRows <= 0 {
		errs = append(errs, fmt.Errorf("IMPORT_MAX_ROWS must be positive"))
	}
	if c.ImportDefaultBatchSize <= 0 || c.ImportDefaultBatchSize > 500 {
		errs = append(errs, fmt.Errorf("IMPORT_DEFAULT_BATCH_SIZE must be between 1 and 500"))
	}
	if c.ImportFlushConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("IMPORT_FLUSH_CONCURRENCY must be positive"))
	}
	if c.MaxContactsPerUser <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CONTACTS_PER_USER must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns -1 for unparsable values so that Validate reports them.
func getEnvInt(key string, fallback int) int {
	valStr := strings.TrimSpace(os.Getenv(key))
	if valStr == "" {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return -1
	}
	return val
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		// Try parsing as duration string? e.g. "10s"
		d, err := time.ParseDuration(valStr)
		if err == nil {
			return d
		}
		return fallback
	}
	return time.Duration(val) * time.Second
}
