package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"pdf-workbench/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	DataDir         string
	Port            string
	CacheMaxBytes   int64
	CacheTTL        time.Duration
	MaxUploadBytes  int64
	MetricsEnabled  bool
	LogHealthChecks bool

	// Derived paths
	DatabasePath string
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	dataDir := getEnv("DATA_DIR", "/data")
	port := getEnv("PORT", "8080")
	cacheMaxMB := getEnvInt("THUMBNAIL_CACHE_MB", 50)
	cacheTTLStr := getEnv("THUMBNAIL_CACHE_TTL", "5m")
	maxUploadMB := getEnvInt("MAX_UPLOAD_MB", 100)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", false)

	logging.Info("  DATA_DIR:             %s", dataDir)
	logging.Info("  PORT:                 %s", port)
	logging.Info("  THUMBNAIL_CACHE_MB:   %d", cacheMaxMB)
	logging.Info("  THUMBNAIL_CACHE_TTL:  %s", cacheTTLStr)
	logging.Info("  MAX_UPLOAD_MB:        %d", maxUploadMB)
	logging.Info("  METRICS_ENABLED:      %v", metricsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:    %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:            %s", logging.GetLevel())

	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil || cacheTTL <= 0 {
		logging.Warn("  Invalid THUMBNAIL_CACHE_TTL, using default: 5m")
		cacheTTL = 5 * time.Minute
	}

	dataDir, err = filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	if err := testWriteAccess(dataDir); err != nil {
		return nil, fmt.Errorf("data directory is not writable: %w", err)
	}
	logging.Info("  [OK] Data directory is writable: %s", dataDir)

	config := &Config{
		DataDir:         dataDir,
		Port:            port,
		CacheMaxBytes:   int64(cacheMaxMB) * 1024 * 1024,
		CacheTTL:        cacheTTL,
		MaxUploadBytes:  int64(maxUploadMB) * 1024 * 1024,
		MetricsEnabled:  metricsEnabled,
		LogHealthChecks: logHealthChecks,
		DatabasePath:    filepath.Join(dataDir, "workbench.db"),
	}

	return config, nil
}

func printBanner() {
	logging.Info("============================================================")
	logging.Info("pdf-workbench %s (commit %s)", Version, Commit)
	logging.Info("  built %s with %s for %s/%s", BuildTime, GoVersion, runtime.GOOS, runtime.GOARCH)
	logging.Info("============================================================")
}

// LogServerStarted logs the final startup summary
func LogServerStarted(port string, elapsed time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("READY")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Listening on :%s (started in %v)", port, elapsed)
}

// LogHTTPRoutes logs all registered HTTP routes when debugging
func LogHTTPRoutes(router *mux.Router) {
	if !logging.IsDebugEnabled() {
		return
	}
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, method := range methods {
			logging.Debug("  route: %-7s %s", method, pathTemplate)
		}
		return nil
	})
	if err != nil {
		logging.Warn("error walking routes: %v", err)
	}
}

// LogFatal logs a fatal startup error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("  Invalid boolean for %s: %q, using default %v", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		logging.Warn("  Invalid value for %s: %q, using default %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	return os.Remove(testFile)
}
