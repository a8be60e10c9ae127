package models

import "time"

// SessionStatus is the persisted lifecycle marker of a claim session.
type SessionStatus string

const (
	StatusOpen     SessionStatus = "OPEN"
	StatusComplete SessionStatus = "COMPLETE"
)

// Field names a required claim slot.
type Field string

const (
	FieldPolicyNumber        Field = "policy_number"
	FieldIncidentDateTime    Field = "incident_datetime"
	FieldVehicleInfo         Field = "vehicle_info"
	FieldIncidentDescription Field = "incident_description"
	FieldClaimantName        Field = "claimant_name"
)

// RequiredFields lists the slots a claim needs, in the order they are asked for.
var RequiredFields = []Field{
	FieldPolicyNumber,
	FieldIncidentDateTime,
	FieldVehicleInfo,
	FieldIncidentDescription,
	FieldClaimantName,
}

var fieldLabels = map[Field]string{
	FieldPolicyNumber:        "Policy Number",
	FieldIncidentDateTime:    "Incident Date",
	FieldVehicleInfo:         "Vehicle Info",
	FieldIncidentDescription: "Description",
	FieldClaimantName:        "Claimant Name",
}

// Label is the human-readable name used in prompts and reports.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// FieldValues carries slot writes for one event.
type FieldValues map[Field]string

// Session is one row of insurance_sessions. Empty strings mean "not yet provided".
type Session struct {
	SessionID           string        `json:"sessionId" db:"session_id"`
	ClaimantName        string        `json:"claimantName,omitempty" db:"claimant_name"`
	PolicyNumber        string        `json:"policyNumber,omitempty" db:"policy_number"`
	IncidentDateTime    string        `json:"incidentDateTime,omitempty" db:"date_time_of_incident"`
	VehicleInfo         string        `json:"vehicleInfo,omitempty" db:"vehicle_info"`
	IncidentDescription string        `json:"incidentDescription,omitempty" db:"incident_description"`
	PhotoUploaded       bool          `json:"photoUploaded" db:"photo_uploaded"`
	StoredStatus        SessionStatus `json:"-" db:"status"`
	DamageReport        string        `json:"damageReport,omitempty" db:"damage_report"`
	CreatedAt           time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time     `json:"updatedAt" db:"updated_at"`
}

// Value returns the current value of a required slot.
func (s *Session) Value(f Field) string {
	switch f {
	case FieldPolicyNumber:
		return s.PolicyNumber
	case FieldIncidentDateTime:
		return s.IncidentDateTime
	case FieldVehicleInfo:
		return s.VehicleInfo
	case FieldIncidentDescription:
		return s.IncidentDescription
	case FieldClaimantName:
		return s.ClaimantName
	}
	return ""
}

// Apply writes the non-empty values onto the session. Empty values never
// clear an existing slot.
func (s *Session) Apply(values FieldValues) {
	for f, v := range values {
		if v == "" {
			continue
		}
		switch f {
		case FieldPolicyNumber:
			s.PolicyNumber = v
		case FieldIncidentDateTime:
			s.IncidentDateTime = v
		case FieldVehicleInfo:
			s.VehicleInfo = v
		case FieldIncidentDescription:
			s.IncidentDescription = v
		case FieldClaimantName:
			s.ClaimantName = v
		}
	}
}

// IsComplete reports whether every required slot is filled.
func (s *Session) IsComplete() bool {
	for _, f := range RequiredFields {
		if s.Value(f) == "" {
			return false
		}
	}
	return true
}

// Status is derived from the slots, not from the stored column.
func (s *Session) Status() SessionStatus {
	if s.IsComplete() {
		return StatusComplete
	}
	return StatusOpen
}

// FilledField is one provided slot.
type FilledField struct {
	Field Field  `json:"field"`
	Value string `json:"value"`
}

// Progress splits the required slots into filled and missing, in canonical order.
type Progress struct {
	Filled  []FilledField `json:"filled"`
	Missing []Field       `json:"missing"`
}

func (s *Session) Progress() Progress {
	p := Progress{Filled: []FilledField{}, Missing: []Field{}}
	for _, f := range RequiredFields {
		if v := s.Value(f); v != "" {
			p.Filled = append(p.Filled, FilledField{Field: f, Value: v})
		} else {
			p.Missing = append(p.Missing, f)
		}
	}
	return p
}
