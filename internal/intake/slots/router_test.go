package slots

import (
	"testing"

	"claim-intake/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestExtractPolicyNumber(t *testing.T) {
	tests := []struct {
		utterance string
		want      string
		wantOK    bool
	}{
		{"my policy is AB-12-99", "AB-12-99", true},
		{"pol 123456", "123456", true},
		{"it's xy-9876 i think", "XY-9876", true},
		{"I don't know it", "", false},
		{"policy", "", false},
		{"my policy is ABCDEF", "", false},
		{"ABCD-EFGH", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ExtractPolicyNumber(tt.utterance)
		assert.Equal(t, tt.wantOK, ok, tt.utterance)
		assert.Equal(t, tt.want, got, tt.utterance)
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		intent    string
		params    map[string]interface{}
		utterance string
		want      models.FieldValues
	}{
		{
			name:   "policy from parameter",
			intent: IntentProvidePolicyNumber,
			params: map[string]interface{}{"policy_number": "PN-5551"},
			want:   models.FieldValues{models.FieldPolicyNumber: "PN-5551"},
		},
		{
			name:   "policy from number parameter",
			intent: IntentProvidePolicyNumber,
			params: map[string]interface{}{"number": float64(778899)},
			want:   models.FieldValues{models.FieldPolicyNumber: "778899"},
		},
		{
			name:      "policy from utterance fallback",
			intent:    IntentProvidePolicyNumber,
			params:    map[string]interface{}{"policy_number": ""},
			utterance: "my policy is AB-12-99",
			want:      models.FieldValues{models.FieldPolicyNumber: "AB-12-99"},
		},
		{
			name:      "policy with nothing usable",
			intent:    IntentProvidePolicyNumber,
			utterance: "no idea",
		},
		{
			name:   "date time from composite",
			intent: IntentProvideDateTime,
			params: map[string]interface{}{"date-time": Object{{Key: "date_time", Value: "2024-05-01T10:00:00Z"}}},
			want:   models.FieldValues{models.FieldIncidentDateTime: "2024-05-01T10:00:00Z"},
		},
		{
			name:   "vehicle from any",
			intent: IntentProvideVehicleInfo,
			params: map[string]interface{}{"any": []interface{}{"blue Honda Civic"}},
			want:   models.FieldValues{models.FieldVehicleInfo: "blue Honda Civic"},
		},
		{
			name:   "name from person object",
			intent: IntentProvideName,
			params: map[string]interface{}{"person": Object{{Key: "name", Value: "Jane Doe"}}},
			want:   models.FieldValues{models.FieldClaimantName: "Jane Doe"},
		},
		{
			name:      "description takes the whole utterance",
			intent:    IntentDescribeIncident,
			params:    map[string]interface{}{"any": "ignored"},
			utterance: "  Rear-ended at a red light  ",
			want:      models.FieldValues{models.FieldIncidentDescription: "Rear-ended at a red light"},
		},
		{
			name:      "blank description",
			intent:    IntentDescribeIncident,
			utterance: "   ",
		},
		{
			name:      "unknown intent",
			intent:    "Default Welcome Intent",
			params:    map[string]interface{}{"policy_number": "PN-1"},
			utterance: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.intent, tt.params, tt.utterance)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup(t *testing.T) {
	r, ok := Lookup(IntentProvideName)
	assert.True(t, ok)
	assert.Equal(t, models.FieldClaimantName, r.Field)
	assert.Equal(t, []string{"claimant_name", "person", "name"}, r.Keys)

	_, ok = Lookup("smalltalk")
	assert.False(t, ok)
}
