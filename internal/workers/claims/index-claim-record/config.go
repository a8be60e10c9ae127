// internal/workers/claims/index-claim-record/config.go
package indexclaimrecord

import "time"

type Config struct {
	IndexName string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		IndexName: "claims",
		Timeout:   10 * time.Second,
	}
}
