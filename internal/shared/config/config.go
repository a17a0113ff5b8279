package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Object store types.
const (
	StoreLocal = "local"
	StoreS3    = "s3"
	StoreMinio = "minio"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	DatabaseURL     string
	CORSAllowOrigin []string

	ObjectStoreType    string
	LocalStoreDir      string
	LocalPublicPath    string
	LocalEnforcePolicy bool

	GCSProject       string
	StorageBucket    string
	GCSKeyFile       string
	StorageAccessKey string
	StorageSecretKey string
	StorageHost      string
	StorageEndpoint  string
	StorageRegion    string
	StorageUseSSL    bool
	PublicPrefix     string

	UploadAllowedExtensions []string
	UploadMaxSizeBytes      int64
	UploadTimeout           time.Duration
	UploadFolders           []string
	UploadRateLimit         float64
	UploadRateBurst         int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience. Variables already
	// present in the environment win.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		DatabaseURL:     dbURL,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		ObjectStoreType:    normalizeStoreType(getEnv("OBJECT_STORE", StoreLocal)),
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./uploads"),
		LocalPublicPath:    normalizePublicPath(getEnv("LOCAL_PUBLIC_PATH", "/uploads")),
		LocalEnforcePolicy: getEnvBool("LOCAL_ENFORCE_POLICY", true),

		GCSProject:       getEnv("GCS_PROJECT", ""),
		StorageBucket:    firstEnv("GCS_BUCKET", "STORAGE_BUCKET"),
		GCSKeyFile:       getEnv("GCS_KEYFILE", ""),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", ""),
		StorageHost:      getEnv("STORAGE_HOST", "storage.googleapis.com"),
		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", "https://storage.googleapis.com"),
		StorageRegion:    getEnv("STORAGE_REGION", "auto"),
		StorageUseSSL:    getEnvBool("STORAGE_USE_SSL", true),
		PublicPrefix:     getEnv("PUBLIC_PREFIX", "public"),

		UploadAllowedExtensions: splitAndTrim(getEnv("UPLOAD_ALLOWED_EXTENSIONS", "jpg,jpeg,png")),
		UploadMaxSizeBytes:      getEnvInt64("UPLOAD_MAX_SIZE_BYTES", 2<<20),
		UploadTimeout:           getEnvDuration("UPLOAD_TIMEOUT", 30*time.Second),
		UploadFolders:           splitAndTrim(getEnv("UPLOAD_FOLDERS", "recipes,users")),
		UploadRateLimit:         getEnvFloat("UPLOAD_RATE_LIMIT", 2),
		UploadRateBurst:         int(getEnvInt64("UPLOAD_RATE_BURST", 10)),
	}
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Printf("load %s: %v", path, err)
		}
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %t", key, raw, def)
		return def
	}
	return val
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		log.Printf("invalid %s=%q, using %g", key, raw, def)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if val, err := time.ParseDuration(raw); err == nil && val > 0 {
		return val
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("invalid %s=%q, using %s", key, raw, def)
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3", "gcs", "remote":
		return StoreS3
	case "minio":
		return StoreMinio
	default:
		return StoreLocal
	}
}

func normalizePublicPath(raw string) string {
	raw = strings.Trim(strings.TrimSpace(raw), "/")
	if raw == "" {
		return ""
	}
	return "/" + raw
}
