package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	// APIBaseURL is the backend HTTP surface; NotifyURL is the websocket notify
	// endpoint the push bridge subscribes to ("" disables push entirely).
	APIBaseURL string
	NotifyURL  string

	// LocalAPIPort serves the control surface the presentation layer talks to.
	LocalAPIPort int

	// TokenPath is where the opaque bearer credential is persisted.
	TokenPath string

	// PushCapable mirrors the "physical device" check of the mobile shell; when
	// false the client runs on polling alone.
	PushCapable bool

	BootstrapDelay time.Duration
	PollInterval   time.Duration
	DebounceQuiet  time.Duration
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "rideshare-client"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))

	cfg.APIBaseURL = cast.ToString(getOrReturnDefault("API_BASE_URL", "http://localhost:8000"))
	cfg.NotifyURL = cast.ToString(getOrReturnDefault("NOTIFY_URL", ""))
	cfg.LocalAPIPort = cast.ToInt(getOrReturnDefault("LOCAL_API_PORT", 7777))

	cfg.TokenPath = cast.ToString(getOrReturnDefault("TOKEN_PATH", ".rideshare/token"))
	cfg.PushCapable = cast.ToBool(getOrReturnDefault("PUSH_CAPABLE", true))

	cfg.BootstrapDelay = time.Duration(cast.ToInt(getOrReturnDefault("BOOTSTRAP_DELAY_MS", 1000))) * time.Millisecond
	cfg.PollInterval = time.Duration(cast.ToInt(getOrReturnDefault("POLL_INTERVAL_MS", 60000))) * time.Millisecond
	cfg.DebounceQuiet = time.Duration(cast.ToInt(getOrReturnDefault("DEBOUNCE_QUIET_MS", 500))) * time.Millisecond

	return cfg
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
