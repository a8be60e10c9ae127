package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullSession() *Session {
	return &Session{
		SessionID:           "abc",
		ClaimantName:        "Ada Lovelace",
		PolicyNumber:        "AB-12-99",
		IncidentDateTime:    "2024-03-01T10:00:00Z",
		VehicleInfo:         "Blue Civic",
		IncidentDescription: "Rear-ended at a light",
	}
}

func TestSession_IsComplete(t *testing.T) {
	s := fullSession()
	assert.True(t, s.IsComplete())
	assert.Equal(t, StatusComplete, s.Status())

	for _, f := range RequiredFields {
		t.Run(string(f), func(t *testing.T) {
			partial := fullSession()
			switch f {
			case FieldPolicyNumber:
				partial.PolicyNumber = ""
			case FieldIncidentDateTime:
				partial.IncidentDateTime = ""
			case FieldVehicleInfo:
				partial.VehicleInfo = ""
			case FieldIncidentDescription:
				partial.IncidentDescription = ""
			case FieldClaimantName:
				partial.ClaimantName = ""
			}
			assert.False(t, partial.IsComplete())
			assert.Equal(t, StatusOpen, partial.Status())
		})
	}
}

func TestSession_StatusIgnoresStoredColumn(t *testing.T) {
	s := &Session{SessionID: "abc", StoredStatus: StatusComplete}
	assert.Equal(t, StatusOpen, s.Status())
}

func TestSession_ApplyNeverClears(t *testing.T) {
	s := &Session{SessionID: "abc", PolicyNumber: "AB-12-99"}
	s.Apply(FieldValues{FieldPolicyNumber: "", FieldClaimantName: "Ada"})

	assert.Equal(t, "AB-12-99", s.PolicyNumber)
	assert.Equal(t, "Ada", s.ClaimantName)
}

func TestSession_Progress(t *testing.T) {
	s := &Session{SessionID: "abc", VehicleInfo: "Blue Civic", ClaimantName: "Ada"}
	p := s.Progress()

	assert.Equal(t, []FilledField{
		{Field: FieldVehicleInfo, Value: "Blue Civic"},
		{Field: FieldClaimantName, Value: "Ada"},
	}, p.Filled)
	assert.Equal(t, []Field{FieldPolicyNumber, FieldIncidentDateTime, FieldIncidentDescription}, p.Missing)

	assert.Empty(t, fullSession().Progress().Missing)
}

func TestField_Label(t *testing.T) {
	assert.Equal(t, "Policy Number", FieldPolicyNumber.Label())
	assert.Equal(t, "unknown", Field("unknown").Label())
}
