package models

// Event is one NLU turn for a session.
type Event struct {
	SessionID  string
	ResponseID string
	Intent     string
	Utterance  string
	Parameters map[string]interface{}
	// Synthesized is set when the session id had to be generated locally.
	Synthesized bool
}

// Reply is the fulfillment returned to the NLU platform.
type Reply struct {
	FulfillmentText string `json:"fulfillmentText"`
	EndInteraction  bool   `json:"endInteraction"`
}
