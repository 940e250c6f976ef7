package config

import (
	"strconv"
	"time"
)

type ClientConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetNoticeTTL() time.Duration
}

type Client struct{}

var _ ClientConfig = Client{}

// GetBaseURL returns the admin backend base URL (e.g. "https://admin.example.com")
func (Client) GetBaseURL() string {
	return GetEnv("ADMIN_BASE_URL", "http://localhost:8000")
}

// GetRequestTimeout returns the per-request timeout; ADMIN_TIMEOUT is in seconds.
func (Client) GetRequestTimeout() time.Duration {
	return durationEnv("ADMIN_TIMEOUT", 10*time.Second)
}

// GetNoticeTTL returns how long transient notices stay visible.
func (Client) GetNoticeTTL() time.Duration {
	return durationEnv("ADMIN_NOTICE_TTL", 5*time.Second)
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}
