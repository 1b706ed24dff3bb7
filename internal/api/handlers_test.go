package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"example.com/activitysignup/internal/directory"
	"example.com/activitysignup/internal/domain"
	"example.com/activitysignup/internal/outbox"
)

func newTestRouter(t *testing.T, opts RouterOptions) http.Handler {
	t.Helper()

	seed, err := directory.LoadSeed("")
	require.NoError(t, err)
	dir, err := directory.NewInMemoryDirectory(seed)
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	service := domain.NewService(dir, outbox.Discard{}, domain.WithLogger(logger))
	opts.Logger = logger
	return NewRouter(NewHandler(service, logger), opts)
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func signupURL(activity, email string) string {
	return "/activities/" + url.PathEscape(activity) + "/signup?email=" + url.QueryEscape(email)
}

func participantsURL(activity, email string) string {
	return "/activities/" + url.PathEscape(activity) + "/participants?email=" + url.QueryEscape(email)
}

func listActivities(t *testing.T, h http.Handler) ActivitiesResponse {
	t.Helper()
	rr := do(t, h, http.MethodGet, "/activities")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body ActivitiesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestGetActivities(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})

	body := listActivities(t, h)
	require.Contains(t, body, "Chess Club")
	require.Contains(t, body, "Programming Class")

	chess := body["Chess Club"]
	assert.NotEmpty(t, chess.Description)
	assert.NotEmpty(t, chess.Schedule)
	assert.Equal(t, 12, chess.MaxParticipants)
	assert.Contains(t, chess.Participants, "michael@mergington.edu")
}

func TestGetActivitiesWireFormat(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})

	rr := do(t, h, http.MethodGet, "/activities")
	require.Equal(t, http.StatusOK, rr.Code)

	var raw map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	fields := raw["Programming Class"]
	for _, key := range []string{"description", "schedule", "max_participants", "participants"} {
		assert.Contains(t, fields, key)
	}
}

func TestSignupAndRemoveParticipant(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})
	email := "tester@example.com"
	activity := "Programming Class"

	assert.NotContains(t, listActivities(t, h)[activity].Participants, email)

	rr := do(t, h, http.MethodPost, signupURL(activity, email))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var signup MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &signup))
	assert.Contains(t, signup.Message, "Signed up")
	assert.Equal(t, "Signed up tester@example.com for Programming Class", signup.Message)

	assert.Contains(t, listActivities(t, h)[activity].Participants, email)

	rr = do(t, h, http.MethodDelete, participantsURL(activity, email))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var removed MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &removed))
	assert.Contains(t, removed.Message, "Removed")

	assert.NotContains(t, listActivities(t, h)[activity].Participants, email)
}

func TestSignupDuplicateFails(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})
	target := signupURL("Programming Class", "dup@example.com")

	rr := do(t, h, http.MethodPost, target)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodPost, target)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, "conflict", body["type"])
	assert.Equal(t, "Student is already signed up", body["detail"])

	// The uniqueness rule spans every activity.
	rr = do(t, h, http.MethodPost, signupURL("Chess Club", "dup@example.com"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NotContains(t, listActivities(t, h)["Chess Club"].Participants, "dup@example.com")
}

func TestDeleteNonexistentParticipantReturns404(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})

	rr := do(t, h, http.MethodDelete, participantsURL("Programming Class", "nobody@example.com"))
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Participant not found", decodeError(t, rr)["detail"])
}

func TestDeleteFromUnknownActivityReturns404(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})

	rr := do(t, h, http.MethodDelete, participantsURL("No Such Activity", "michael@mergington.edu"))
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Activity not found", decodeError(t, rr)["detail"])
}

func TestSignupNonexistentActivityReturns404(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})

	rr := do(t, h, http.MethodPost, signupURL("No Such Activity", "noact@example.com"))
	require.Equal(t, http.StatusNotFound, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, "not_found", body["type"])
	assert.Equal(t, "Activity not found", body["detail"])
}

func TestSignupRequiresEmail(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})

	rr := do(t, h, http.MethodPost, "/activities/Chess%20Club/signup")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "validation_failed", decodeError(t, rr)["type"])
}

func TestActivityNameIsPercentDecoded(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})

	rr := do(t, h, http.MethodPost, "/activities/Chess%20Club/signup?email=a%2Bb%40example.com")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, listActivities(t, h)["Chess Club"].Participants, "a+b@example.com")
}

func TestRemoveDecodesActivityName(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})

	rr := do(t, h, http.MethodDelete, "/activities/Chess%20Club/participants?email=michael%40mergington.edu")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var body MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Removed michael@mergington.edu from Chess Club", body.Message)
	assert.NotContains(t, listActivities(t, h)["Chess Club"].Participants, "michael@mergington.edu")
}

func TestAccessLogOmitsQueryString(t *testing.T) {
	seed, err := directory.LoadSeed("")
	require.NoError(t, err)
	dir, err := directory.NewInMemoryDirectory(seed)
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	h := NewRouter(
		NewHandler(domain.NewService(dir, outbox.Discard{}), zaptest.NewLogger(t)),
		RouterOptions{Logger: zap.New(core)},
	)

	rr := do(t, h, http.MethodPost, signupURL("Chess Club", "private@example.com"))
	require.Equal(t, http.StatusOK, rr.Code)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/activities/Chess Club/signup", fields["path"])
	for key, value := range fields {
		assert.NotContains(t, fmt.Sprint(value), "private@example.com", "field %s", key)
	}
}

func TestActivityNameWithEncodedSlash(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})

	rr := do(t, h, http.MethodPost, "/activities/Chess%2FClub/signup?email=x%40example.com")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Activity not found", decodeError(t, rr)["detail"])
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})

	rr := do(t, h, http.MethodGet, signupURL("Chess Club", "x@example.com"))
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "method_not_allowed", decodeError(t, rr)["type"])
}

func TestHealthzAndMetrics(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})

	rr := do(t, h, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	do(t, h, http.MethodGet, "/activities")
	rr = do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "activity_signup_service_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, RouterOptions{AllowedOrigin: "http://localhost:5173"})

	rr := do(t, h, http.MethodOptions, "/activities")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticFilesAndRootRedirect(t *testing.T) {
	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<h1>Activities</h1>"), 0o600))
	h := newTestRouter(t, RouterOptions{StaticDir: staticDir})

	rr := do(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	assert.Equal(t, "/static/", rr.Header().Get("Location"))

	rr = do(t, h, http.MethodGet, "/static/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Activities")
}

func TestRootIsNotFoundWithoutStaticDir(t *testing.T) {
	h := newTestRouter(t, RouterOptions{})

	rr := do(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusNotFound, rr.Code)
}
