package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Analyzer modes
const (
	AnalyzerHaar   = "haar"
	AnalyzerRemote = "remote"
)

type Config struct {
	// Application
	Version     string
	Environment string
	InstanceID  string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// Camera
	CameraIndices []int
	FrameWidth    int
	FrameHeight   int
	CameraFPS     int
	MirrorFrames  bool

	// Pipeline
	AnalyzeEvery  int           // Run the analyzer on every Nth frame
	FrameInterval time.Duration // Target time between published frames
	JPEGQuality   int
	StreamBuffer  int // Chunks buffered per viewer before frames are dropped

	// History
	HistoryCapacity int
	RecentLimit     int

	// Analyzer
	AnalyzerMode    string
	CascadePath     string
	AnalyzerSubject string
	AnalyzerTimeout time.Duration

	// NATS (event publishing and remote analyzer)
	NatsEnabled        bool
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	EventsSubject      string

	// gRPC health service, 0 disables it
	GRPCPort int

	// Swagger Configuration
	SwaggerHost string

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found or error loading .env file, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	cfg := &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		InstanceID:  getEnv("INSTANCE_ID", "emotion-worker-1"),
		Port:        getEnvInt("PORT", 5000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// Camera
		CameraIndices: getEnvIntList("CAMERA_INDICES", []int{0, 1, 2}),
		FrameWidth:    getEnvInt("FRAME_WIDTH", 640),
		FrameHeight:   getEnvInt("FRAME_HEIGHT", 480),
		CameraFPS:     getEnvInt("CAMERA_FPS", 30),
		MirrorFrames:  getEnvBool("MIRROR_FRAMES", true),

		// Pipeline
		AnalyzeEvery:  getEnvInt("ANALYZE_EVERY", 5),
		FrameInterval: getEnvDuration("FRAME_INTERVAL", 33*time.Millisecond),
		JPEGQuality:   getEnvInt("JPEG_QUALITY", 85),
		StreamBuffer:  getEnvInt("STREAM_BUFFER", 5),

		// History
		HistoryCapacity: getEnvInt("HISTORY_CAPACITY", 100),
		RecentLimit:     getEnvInt("RECENT_LIMIT", 20),

		// Analyzer
		AnalyzerMode:    strings.ToLower(getEnv("ANALYZER_MODE", AnalyzerHaar)),
		CascadePath:     getEnv("CASCADE_PATH", "data/haarcascade_frontalface_default.xml"),
		AnalyzerSubject: getEnv("ANALYZER_SUBJECT", "emotion.analyze"),
		AnalyzerTimeout: getEnvDuration("ANALYZER_TIMEOUT", 500*time.Millisecond),

		// NATS
		NatsEnabled:        getEnvBool("NATS_ENABLED", false),
		NatsURL:            getNatsURL(),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited
		EventsSubject:      getEnv("EVENTS_SUBJECT", "emotion.detections"),

		GRPCPort: getEnvInt("GRPC_PORT", 0),

		SwaggerHost: getEnv("SWAGGER_HOST", "localhost:5000"),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	cfg.Validate()
	return cfg
}

// Validate replaces out-of-range values with their defaults.
func (c *Config) Validate() {
	if c.AnalyzeEvery < 1 {
		log.Warn().Int("analyze_every", c.AnalyzeEvery).Msg("ANALYZE_EVERY must be >= 1, using 5")
		c.AnalyzeEvery = 5
	}
	if c.FrameInterval < 0 {
		c.FrameInterval = 0
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		log.Warn().Int("jpeg_quality", c.JPEGQuality).Msg("JPEG_QUALITY out of range, using 85")
		c.JPEGQuality = 85
	}
	if c.HistoryCapacity < 1 {
		c.HistoryCapacity = 100
	}
	if c.RecentLimit < 1 {
		c.RecentLimit = 20
	}
	if c.StreamBuffer < 1 {
		c.StreamBuffer = 5
	}
	if len(c.CameraIndices) == 0 {
		c.CameraIndices = []int{0, 1, 2}
	}
	if c.AnalyzerMode != AnalyzerHaar && c.AnalyzerMode != AnalyzerRemote {
		log.Warn().Str("analyzer_mode", c.AnalyzerMode).Msg("Unknown ANALYZER_MODE, using haar")
		c.AnalyzerMode = AnalyzerHaar
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvIntList parses a comma separated list like "0,1,2"
func getEnvIntList(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		parsed, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer list, using default")
			return defaultValue
		}
		out = append(out, parsed)
	}
	return out
}

// Helper functions for Docker environment detection
func isRunningInDocker() bool {
	if os.Getenv("DOCKER_CONTAINER") == "true" {
		return true
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

// getNatsURL returns the appropriate NATS URL based on environment
func getNatsURL() string {
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		return envURL
	}

	// If running in Docker, use service name; otherwise use localhost
	if isRunningInDocker() {
		return "nats://nats:4222"
	}

	return "nats://localhost:4222"
}
