// internal/workers/claims/analyze-damage-photo/models.go
package analyzedamagephoto

type Input struct {
	SessionID string `json:"sessionId"`
	PhotoPath string `json:"photoPath"`
}

type Output struct {
	DamageReport string `json:"damageReport"`
	Severity     string `json:"severity"`
}
