// internal/workers/claims/analyze-damage-photo/config.go
package analyzedamagephoto

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
	}
}
