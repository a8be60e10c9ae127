package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"claim-intake/internal/intake"
	"claim-intake/internal/intake/replay"
	"claim-intake/internal/intake/responder"
	"claim-intake/internal/intake/store/storetest"
	"claim-intake/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockWorkflows struct {
	mock.Mock
}

func (m *MockWorkflows) StartProcess(ctx context.Context, id string, vars map[string]interface{}) (int64, error) {
	args := m.Called(ctx, id, vars)
	return args.Get(0).(int64), args.Error(1)
}

type countingGenerator struct {
	calls int
}

func (g *countingGenerator) NextPrompt(context.Context, string, models.Progress) (string, error) {
	g.calls++
	return "Thanks. What else can you tell me?", nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return stderrors.New("down") }

// ==========================
// Test Helper Functions
// ==========================

type fixture struct {
	server    *httptest.Server
	store     *storetest.MemoryStore
	gen       *countingGenerator
	workflows *MockWorkflows
	uploadDir string
}

func newFixture(t *testing.T, withReplay bool) *fixture {
	t.Helper()

	f := &fixture{
		store:     storetest.NewMemoryStore(),
		gen:       &countingGenerator{},
		workflows: new(MockWorkflows),
		uploadDir: t.TempDir(),
	}

	resp := responder.New(responder.Config{PublicBaseURL: "https://claims.example.com"}, f.gen, nil)
	agent := intake.NewAgent(f.store, resp, f.workflows, nil, nil)

	deps := Dependencies{
		Agent:     agent,
		Store:     f.store,
		Workflows: f.workflows,
		Pingers:   map[string]Pinger{"postgres": f.store},
	}
	if withReplay {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		t.Cleanup(mr.Close)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })
		deps.Replay = replay.New(rdb, time.Minute, nil)
	}

	srv := NewServer(Config{UploadDir: f.uploadDir, MaxUploadBytes: 1 << 20}, deps)
	f.server = httptest.NewServer(srv.Router())
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) postWebhook(t *testing.T, body string) models.Reply {
	t.Helper()
	resp, err := http.Post(f.server.URL+"/webhook", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply models.Reply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	return reply
}

func webhookBody(responseID, intent, text, params string) string {
	return `{"responseId":"` + responseID + `","session":"projects/p/agent/sessions/abc123",` +
		`"queryResult":{"queryText":"` + text + `","intent":{"displayName":"` + intent + `"},"parameters":` + params + `}}`
}

// ==========================
// Webhook
// ==========================

func TestSessionIDFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"projects/p/agent/sessions/abc123", "abc123"},
		{" projects/p/agent/sessions/abc123 ", "abc123"},
		{"projects/p/agent/sessions/", ""},
		{"projects/p/agent/sessions/abc123/", ""},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sessionIDFromPath(tt.path), tt.path)
	}
}

func TestParseEvent_EmptySessionSegmentIsSynthesized(t *testing.T) {
	srv := NewServer(Config{}, Dependencies{})
	body := func(session string) []byte {
		return []byte(`{"responseId":"r1","session":"` + session + `",` +
			`"queryResult":{"queryText":"Jane","intent":{"displayName":"provide_name"},"parameters":{}}}`)
	}

	a, _ := srv.parseEvent(body("projects/p/agent/sessions/"))
	b, _ := srv.parseEvent(body("projects/a/agent/sessions/"))

	assert.True(t, a.Synthesized)
	assert.True(t, b.Synthesized)
	assert.NotEqual(t, "sessions", a.SessionID)
	assert.NotEmpty(t, a.SessionID)
	assert.NotEqual(t, a.SessionID, b.SessionID)
}

func TestWebhook_EmptySessionSegmentDoesNotShareRow(t *testing.T) {
	f := newFixture(t, false)

	for _, project := range []string{"p", "a"} {
		body := `{"responseId":"r-` + project + `","session":"projects/` + project + `/agent/sessions/",` +
			`"queryResult":{"queryText":"Jane","intent":{"displayName":"provide_name"},"parameters":{"name":"Jane"}}}`
		reply := f.postWebhook(t, body)
		assert.NotEmpty(t, reply.FulfillmentText)
	}

	assert.Equal(t, 2, f.store.Len())
	_, err := f.store.Fetch(context.Background(), "sessions")
	assert.Error(t, err)
}

func TestWebhook_StoresSlotAndAsks(t *testing.T) {
	f := newFixture(t, false)

	reply := f.postWebhook(t, webhookBody("r1", "provide_policy_number", "my policy is AB-12-99", `{"policy_number":""}`))
	assert.Equal(t, "Thanks. What else can you tell me?", reply.FulfillmentText)
	assert.False(t, reply.EndInteraction)

	sess, err := f.store.Fetch(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "AB-12-99", sess.PolicyNumber)
}

func TestWebhook_MalformedBodyStillAnswers(t *testing.T) {
	f := newFixture(t, false)

	for _, body := range []string{`not json`, `{}`, `{"queryResult":{"intent":"oops"}}`} {
		reply := f.postWebhook(t, body)
		assert.NotEmpty(t, reply.FulfillmentText, body)
		assert.False(t, reply.EndInteraction, body)
	}
	assert.Equal(t, 3, f.store.Len())
}

func TestWebhook_StoreUnavailable(t *testing.T) {
	f := newFixture(t, false)
	f.store.Fail(storetest.ErrInjected)

	reply := f.postWebhook(t, webhookBody("r1", "provide_name", "Jane", `{"name":"Jane"}`))
	assert.Equal(t, responder.TechnicalIssueText, reply.FulfillmentText)
	assert.False(t, reply.EndInteraction)
}

func TestWebhook_RedeliveryIsReplayed(t *testing.T) {
	f := newFixture(t, true)
	body := webhookBody("r-same", "provide_vehicle_info", "a blue civic", `{"vehicle_info":"Blue Civic"}`)

	first := f.postWebhook(t, body)
	second := f.postWebhook(t, body)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.gen.calls)
	assert.Equal(t, 1, f.store.Merges)
}

func TestWebhook_StoreFailureIsNotCached(t *testing.T) {
	f := newFixture(t, true)
	body := webhookBody("r-flaky", "provide_name", "Jane", `{"name":"Jane"}`)

	f.store.Fail(storetest.ErrInjected)
	assert.Equal(t, responder.TechnicalIssueText, f.postWebhook(t, body).FulfillmentText)

	f.store.Fail(nil)
	assert.NotEqual(t, responder.TechnicalIssueText, f.postWebhook(t, body).FulfillmentText)
}

// ==========================
// Upload
// ==========================

func multipartPhoto(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func TestUploadForm(t *testing.T) {
	f := newFixture(t, false)

	resp, err := http.Get(f.server.URL + "/upload-image/abc123")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestUpload_StartsPhotoReview(t *testing.T) {
	f := newFixture(t, false)
	f.store.Put(models.Session{SessionID: "abc123"})

	wantPath := filepath.Join(f.uploadDir, "abc123_front.png")
	f.workflows.On("StartProcess", mock.Anything, intake.ProcessClaimPhotoReview, map[string]interface{}{
		"sessionId": "abc123",
		"photoPath": wantPath,
	}).Return(int64(7), nil)

	body, ct := multipartPhoto(t, "../../front.png", pngBytes)
	resp, err := http.Post(f.server.URL+"/upload-image/abc123", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	saved, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, saved)
	f.workflows.AssertExpectations(t)
}

func TestUpload_Rejections(t *testing.T) {
	f := newFixture(t, false)
	f.store.Put(models.Session{SessionID: "abc123"})

	body, ct := multipartPhoto(t, "a.png", pngBytes)
	resp, err := http.Post(f.server.URL+"/upload-image/ghost", ct, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, ct = multipartPhoto(t, "notes.txt", []byte("just some text, not an image"))
	resp, err = http.Post(f.server.URL+"/upload-image/abc123", ct, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	body, ct = multipartPhoto(t, "huge.png", append(pngBytes, make([]byte, 1<<20)...))
	resp, err = http.Post(f.server.URL+"/upload-image/abc123", ct, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	f.workflows.AssertNotCalled(t, "StartProcess", mock.Anything, mock.Anything, mock.Anything)
}

// ==========================
// Status / Health
// ==========================

func TestClaimStatus(t *testing.T) {
	f := newFixture(t, false)
	f.store.Put(models.Session{SessionID: "abc123", PolicyNumber: "PN-1"})

	resp, err := http.Get(f.server.URL + "/claims/abc123")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got claimStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, models.StatusOpen, got.Status)
	assert.Len(t, got.Filled, 1)
	assert.Len(t, got.Missing, 4)

	resp, err = http.Get(f.server.URL + "/claims/ghost")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	f.store.Fail(storetest.ErrInjected)
	resp, err = http.Get(f.server.URL + "/claims/abc123")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthAndReady(t *testing.T) {
	f := newFixture(t, false)

	resp, err := http.Get(f.server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	srv := NewServer(Config{}, Dependencies{Pingers: map[string]Pinger{"redis": failingPinger{}}})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
}
