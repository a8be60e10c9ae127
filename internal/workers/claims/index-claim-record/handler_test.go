// internal/workers/claims/index-claim-record/handler_test.go
package indexclaimrecord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"claim-intake/internal/common/errors"
	"claim-intake/internal/common/logger"
	"claim-intake/internal/intake/store/storetest"
	"claim-intake/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newESServer(t *testing.T, status int, capture *ClaimDocument, path *string) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if path != nil {
			*path = r.Method + " " + r.URL.Path
		}
		if capture != nil {
			_ = json.NewDecoder(r.Body).Decode(capture)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"result":"created","_id":"abc123"}`))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func seededStore() *storetest.MemoryStore {
	mem := storetest.NewMemoryStore()
	mem.Put(models.Session{
		SessionID:           "abc123",
		ClaimantName:        "Jane Doe",
		PolicyNumber:        "PN-1",
		IncidentDateTime:    "2024-05-01",
		VehicleInfo:         "Blue Civic",
		IncidentDescription: "Rear-ended",
		PhotoUploaded:       true,
		DamageReport:        "Bumper dented",
	})
	return mem
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	var doc ClaimDocument
	var path string
	client := newESServer(t, http.StatusCreated, &doc, &path)
	h := NewHandler(LoadConfig(), client, seededStore(), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{SessionID: "abc123", Severity: "high"})
	require.NoError(t, err)
	assert.True(t, out.Indexed)
	assert.Equal(t, "claims", out.Index)
	assert.Equal(t, "abc123", out.DocumentID)

	assert.Equal(t, "PUT /claims/_doc/abc123", path)
	assert.Equal(t, "COMPLETE", doc.Status)
	assert.Equal(t, "PN-1", doc.PolicyNumber)
	assert.Equal(t, "High", doc.Severity)
	assert.True(t, doc.PhotoUploaded)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	t.Run("elasticsearch rejects document", func(t *testing.T) {
		h := NewHandler(LoadConfig(), newESServer(t, http.StatusBadRequest, nil, nil), seededStore(), logger.NewTestLogger(t))

		_, err := h.Execute(context.Background(), &Input{SessionID: "abc123"})
		require.Error(t, err)
		code, _ := errors.CodeOf(err)
		assert.Equal(t, errors.ErrCodeIndexingFailed, code)
	})

	t.Run("unknown session", func(t *testing.T) {
		h := NewHandler(LoadConfig(), newESServer(t, http.StatusCreated, nil, nil), seededStore(), logger.NewTestLogger(t))

		_, err := h.Execute(context.Background(), &Input{SessionID: "ghost"})
		assert.ErrorIs(t, err, errors.ErrSessionNotFound)
	})

	t.Run("missing session id", func(t *testing.T) {
		h := NewHandler(LoadConfig(), newESServer(t, http.StatusCreated, nil, nil), seededStore(), logger.NewTestLogger(t))

		_, err := h.Execute(context.Background(), &Input{})
		code, _ := errors.CodeOf(err)
		assert.Equal(t, errors.ErrCodeBusinessRule, code)
	})
}
