// internal/workers/claims/send-claim-summary/models.go
package sendclaimsummary

type Input struct {
	SessionID    string `json:"sessionId"`
	DamageReport string `json:"damageReport,omitempty"`
	Severity     string `json:"severity,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "SENT"
	StatusFailed   = "FAILED"
	StatusDisabled = "DISABLED"
)
