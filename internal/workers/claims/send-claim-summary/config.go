// internal/workers/claims/send-claim-summary/config.go
package sendclaimsummary

import (
	"time"

	"claim-intake/internal/vision"
)

type Config struct {
	EmailEnabled      bool
	SMSEnabled        bool
	FromEmail         string
	ToEmails          []string
	TopicARN          string
	SeverityThreshold string
	AWSRegion         string
	Timeout           time.Duration
}

func LoadConfig() *Config {
	return &Config{
		SeverityThreshold: vision.SeverityHigh,
		AWSRegion:         "us-east-1",
		Timeout:           30 * time.Second,
	}
}
