// internal/workers/claims/index-claim-record/models.go
package indexclaimrecord

import "time"

type Input struct {
	SessionID string `json:"sessionId"`
	Severity  string `json:"severity,omitempty"`
}

type Output struct {
	Indexed    bool   `json:"indexed"`
	Index      string `json:"index"`
	DocumentID string `json:"documentId"`
}

// ClaimDocument is the searchable shape of a completed claim.
type ClaimDocument struct {
	SessionID           string    `json:"sessionId"`
	Status              string    `json:"status"`
	ClaimantName        string    `json:"claimantName"`
	PolicyNumber        string    `json:"policyNumber"`
	IncidentDateTime    string    `json:"incidentDateTime"`
	VehicleInfo         string    `json:"vehicleInfo"`
	IncidentDescription string    `json:"incidentDescription"`
	PhotoUploaded       bool      `json:"photoUploaded"`
	DamageReport        string    `json:"damageReport,omitempty"`
	Severity            string    `json:"severity,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	IndexedAt           time.Time `json:"indexedAt"`
}

// IndexMapping is the mapping used when the claims index is created.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "sessionId":           {"type": "keyword"},
      "status":              {"type": "keyword"},
      "claimantName":        {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "policyNumber":        {"type": "keyword"},
      "incidentDateTime":    {"type": "text"},
      "vehicleInfo":         {"type": "text"},
      "incidentDescription": {"type": "text"},
      "photoUploaded":       {"type": "boolean"},
      "damageReport":        {"type": "text"},
      "severity":            {"type": "keyword"},
      "createdAt":           {"type": "date"},
      "indexedAt":           {"type": "date"}
    }
  }
}`
