package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Debug(msg string, keysAndValues ...interface{}) {}

func newTestClient(baseURL string) *TrustAdapterClient {
	return NewTrustAdapterClient(&ClientConfig{
		TrustAdapterURL: baseURL,
		Timeout:         2 * time.Second,
	}, nopLogger{})
}

func TestTestConnection_ForwardsSessionCookie(t *testing.T) {
	var gotCookie string
	var gotRequestID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/healthcheck", r.URL.Path)
		if c, err := r.Cookie(SessionCookieName); err == nil {
			gotCookie = c.Value
		}
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.TestConnection(context.Background(), "session-token")
	require.NoError(t, err)

	assert.Equal(t, "session-token", gotCookie)
	assert.NotEmpty(t, gotRequestID)
}

func TestTestConnection_NonOKIsCommunicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).TestConnection(context.Background(), "tok")

	var comm *CommunicationError
	require.ErrorAs(t, err, &comm)
	assert.Equal(t, "test connection", comm.Op)
}

func TestTestConnection_Unreachable(t *testing.T) {
	err := newTestClient("http://127.0.0.1:1").TestConnection(context.Background(), "tok")

	var comm *CommunicationError
	require.ErrorAs(t, err, &comm)
}

func TestCreateTestResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/testresult", r.URL.Path)

		var req TestResultRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(10), req.TypeID)
		assert.Equal(t, "MRN0000001", req.HospitalNumber)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(TestResult{
			ID:             "ext-42",
			TypeID:         req.TypeID,
			HospitalNumber: req.HospitalNumber,
		})
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).CreateTestResult(context.Background(), &TestResultRequest{
		TypeID:         10,
		HospitalNumber: "MRN0000001",
		PathwayName:    "Lung cancer",
	}, "tok")
	require.NoError(t, err)
	assert.Equal(t, "ext-42", result.ID)
}

func TestCreateTestResult_MissingReferenceID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"typeId": 10})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateTestResult(context.Background(), &TestResultRequest{TypeID: 10}, "tok")

	var comm *CommunicationError
	require.ErrorAs(t, err, &comm)
}

func TestLoadTestResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/testresult/ext-42", r.URL.Path)
		json.NewEncoder(w).Encode(TestResult{ID: "ext-42", CurrentState: "COMPLETED"})
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).LoadTestResult(context.Background(), "ext-42", "tok")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", result.CurrentState)
}
