package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"claim-intake/internal/common/errors"
	"claim-intake/internal/common/metrics"
	"claim-intake/internal/intake/slots"
	"claim-intake/internal/models"

	"github.com/google/uuid"
)

type fulfillmentRequest struct {
	ResponseID  string `json:"responseId"`
	Session     string `json:"session"`
	QueryResult struct {
		QueryText string `json:"queryText"`
		Intent    struct {
			DisplayName string `json:"displayName"`
		} `json:"intent"`
		Parameters json.RawMessage `json:"parameters"`
	} `json:"queryResult"`
}

// sessionIDFromPath returns the last path segment of an NLU session path.
// An empty last segment yields "" so the caller synthesizes an id.
func sessionIDFromPath(session string) string {
	session = strings.TrimSpace(session)
	return session[strings.LastIndex(session, "/")+1:]
}

// parseEvent never fails: malformed parts are reported and replaced with
// neutral values so the turn still gets an answer.
func (s *Server) parseEvent(body []byte) (models.Event, []string) {
	var problems []string

	if result := s.deps.Validator.ValidateJSON(body); !result.Valid {
		problems = append(problems, result.Summary())
	}

	var req fulfillmentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		problems = append(problems, "undecodable body: "+err.Error())
		req = fulfillmentRequest{}
	}

	params, err := slots.DecodeParameters(req.QueryResult.Parameters)
	if err != nil {
		problems = append(problems, "parameters: "+err.Error())
		params = map[string]interface{}{}
	}

	ev := models.Event{
		SessionID:  sessionIDFromPath(req.Session),
		ResponseID: req.ResponseID,
		Intent:     strings.TrimSpace(req.QueryResult.Intent.DisplayName),
		Utterance:  req.QueryResult.QueryText,
		Parameters: params,
	}
	if ev.SessionID == "" {
		ev.SessionID = uuid.New().String()
		ev.Synthesized = true
	}
	return ev, problems
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		body = nil
	}

	ev, problems := s.parseEvent(body)
	if len(problems) > 0 {
		malformed := errors.NewMalformedEventError(strings.Join(problems, "; "))
		s.logger.Warn("Malformed NLU event", map[string]interface{}{
			"sessionId":   ev.SessionID,
			"synthesized": ev.Synthesized,
			"error":       malformed.Error(),
		})
	}

	cacheable := ev.ResponseID != "" && !ev.Synthesized
	if cacheable {
		if reply, ok := s.deps.Replay.Get(r.Context(), ev.ResponseID); ok {
			metrics.ReplayHits.Inc()
			s.logger.Info("Replaying cached reply", map[string]interface{}{
				"sessionId":  ev.SessionID,
				"responseId": ev.ResponseID,
			})
			writeJSON(w, http.StatusOK, reply)
			return
		}
	}

	reply, err := s.deps.Agent.Handle(r.Context(), ev)
	if err == nil && cacheable {
		s.deps.Replay.Put(r.Context(), ev.ResponseID, reply)
	}

	writeJSON(w, http.StatusOK, reply)
}
