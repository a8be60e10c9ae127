package slots

import (
	"strings"

	"claim-intake/internal/models"
)

// Intent labels emitted by the NLU agent.
const (
	IntentProvidePolicyNumber = "provide_policy_number"
	IntentProvideDateTime     = "provide_date_time"
	IntentProvideVehicleInfo  = "provide_vehicle_info"
	IntentProvideName         = "provide_name"
	IntentDescribeIncident    = "describe_incident"
)

// Route says where an intent's value comes from.
type Route struct {
	Field models.Field
	// Keys are candidate parameter names, tried in order.
	Keys []string
	// FromUtterance takes the raw utterance instead of parameters.
	FromUtterance bool
	// Fallback is tried on the utterance when no key yields a value.
	Fallback func(utterance string) (string, bool)
}

var routes = map[string]Route{
	IntentProvidePolicyNumber: {
		Field:    models.FieldPolicyNumber,
		Keys:     []string{"policy_number", "number"},
		Fallback: ExtractPolicyNumber,
	},
	IntentProvideDateTime: {
		Field: models.FieldIncidentDateTime,
		Keys:  []string{"date", "date-time", "time"},
	},
	IntentProvideVehicleInfo: {
		Field: models.FieldVehicleInfo,
		Keys:  []string{"vehicle_info", "any"},
	},
	IntentProvideName: {
		Field: models.FieldClaimantName,
		Keys:  []string{"claimant_name", "person", "name"},
	},
	IntentDescribeIncident: {
		Field:         models.FieldIncidentDescription,
		FromUtterance: true,
	},
}

// Lookup returns the route for an intent label.
func Lookup(intent string) (Route, bool) {
	r, ok := routes[intent]
	return r, ok
}

// Extract turns one NLU event into slot writes. Unknown intents and events
// without a usable value produce no writes.
func Extract(intent string, params map[string]interface{}, utterance string) models.FieldValues {
	route, ok := Lookup(intent)
	if !ok {
		return nil
	}

	var value string
	if route.FromUtterance {
		value = strings.TrimSpace(utterance)
	} else {
		value, ok = Normalize(params, route.Keys...)
		if !ok && route.Fallback != nil {
			value, _ = route.Fallback(utterance)
		}
	}

	if value == "" {
		return nil
	}
	return models.FieldValues{route.Field: value}
}
