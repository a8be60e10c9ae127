package webhook

import (
	stderrors "errors"
	"net/http"
	"time"

	"claim-intake/internal/common/errors"
	"claim-intake/internal/models"

	"github.com/go-chi/chi/v5"
)

type claimStatus struct {
	SessionID     string               `json:"sessionId"`
	Status        models.SessionStatus `json:"status"`
	PhotoUploaded bool                 `json:"photoUploaded"`
	Filled        []models.FilledField `json:"filled"`
	Missing       []models.Field       `json:"missing"`
	DamageReport  string               `json:"damageReport,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
}

func (s *Server) handleClaimStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := s.deps.Store.Fetch(r.Context(), sessionID)
	if err != nil {
		if stderrors.Is(err, errors.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown session"})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "session store unavailable"})
		return
	}

	progress := sess.Progress()
	writeJSON(w, http.StatusOK, claimStatus{
		SessionID:     sess.SessionID,
		Status:        sess.Status(),
		PhotoUploaded: sess.PhotoUploaded,
		Filled:        progress.Filled,
		Missing:       progress.Missing,
		DamageReport:  sess.DamageReport,
		CreatedAt:     sess.CreatedAt,
	})
}
