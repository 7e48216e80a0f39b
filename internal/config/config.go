package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	commoncfg "quickfirstaid/common/config"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config quickfirstaid device service configuration.
type Config struct {
	HTTP struct {
		Addr string
	}

	// DeviceID pins the slot scope; empty means "read or generate the stored device id".
	DeviceID string

	Store struct {
		Backend   string
		Dir       string
		KeyPrefix string
	}

	Database commoncfg.DatabaseConfig
	Redis    commoncfg.RedisConfig
	MQTT     commoncfg.MQTTConfig

	SessionStream struct {
		Enabled bool
		Name    string
		MaxLen  int64
	}

	Auth      AuthConfig
	Documents DocumentsConfig
	Vision    VisionConfig
	Groq      GroqConfig

	// CollaboratorTimeout bounds every outbound call to a hosted service.
	CollaboratorTimeout time.Duration

	Log struct {
		Level  string
		Format string
	}
}

// AuthConfig Firebase Identity Toolkit and secure token endpoints.
type AuthConfig struct {
	BaseURL  string
	TokenURL string
	APIKey   string
}

// DocumentsConfig Firestore REST endpoint.
type DocumentsConfig struct {
	BaseURL   string
	ProjectID string
}

// VisionConfig OpenAI-compatible vision model used for triage and label scans.
type VisionConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// GroqConfig chat, transcription and speech models.
type GroqConfig struct {
	BaseURL   string
	APIKey    string
	ChatModel string
	STTModel  string
	TTSModel  string
	TTSVoice  string
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", "127.0.0.1:8787")
	cfg.DeviceID = getEnv("DEVICE_ID", "")

	cfg.Store.Backend = getEnv("STORE_BACKEND", BackendFile)
	cfg.Store.Dir = getEnv("STORE_DIR", defaultStoreDir())
	cfg.Store.KeyPrefix = getEnv("STORE_KEY_PREFIX", "quickfirstaid")

	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "quickfirstaid",
		SSLMode:  "disable",
		MaxConns: 4,
		MaxIdle:  2,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTT = commoncfg.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "quickfirstaid-device",
		Topic:    "quickfirstaid/session",
		QoS:      1,
	}
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.SessionStream.Enabled = getEnv("SESSION_STREAM_ENABLED", "false") == "true"
	cfg.SessionStream.Name = getEnv("SESSION_STREAM", "quickfirstaid:session:events")
	cfg.SessionStream.MaxLen = int64(parseInt(getEnv("SESSION_STREAM_MAXLEN", "1000"), 1000))

	cfg.Auth.BaseURL = getEnv("AUTH_BASE_URL", "https://identitytoolkit.googleapis.com/v1")
	cfg.Auth.TokenURL = getEnv("AUTH_TOKEN_URL", "https://securetoken.googleapis.com/v1")
	cfg.Auth.APIKey = getEnv("AUTH_API_KEY", "")

	cfg.Documents.BaseURL = getEnv("DOCUMENTS_BASE_URL", "https://firestore.googleapis.com/v1")
	cfg.Documents.ProjectID = getEnv("FIREBASE_PROJECT_ID", "")

	cfg.Vision.BaseURL = getEnv("VISION_BASE_URL", "https://router.huggingface.co/v1")
	cfg.Vision.APIKey = getEnv("VISION_API_KEY", "")
	cfg.Vision.Model = getEnv("VISION_MODEL", "Qwen/Qwen3-VL-8B-Instruct")

	cfg.Groq.BaseURL = getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	cfg.Groq.APIKey = getEnv("GROQ_API_KEY", "")
	cfg.Groq.ChatModel = getEnv("CHAT_MODEL", "llama-3.3-70b-versatile")
	cfg.Groq.STTModel = getEnv("STT_MODEL", "whisper-large-v3-turbo")
	cfg.Groq.TTSModel = getEnv("TTS_MODEL", "canopylabs/orpheus-v1-english")
	cfg.Groq.TTSVoice = getEnv("TTS_VOICE", "alloy")

	timeout := parseInt(getEnv("COLLABORATOR_TIMEOUT_SECONDS", "30"), 30)
	if timeout <= 0 {
		timeout = 30
	}
	cfg.CollaboratorTimeout = time.Duration(timeout) * time.Second

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func defaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "quickfirstaid")
	}
	return filepath.Join(home, ".quickfirstaid")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
