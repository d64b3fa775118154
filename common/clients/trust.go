package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// CommunicationError indicates the trust adapter could not be reached or
// returned a non-success response. It is a transient failure: the whole
// submission aborts and the caller may retry.
type CommunicationError struct {
	Op  string
	Err error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("trust adapter %s failed: %v", e.Op, e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// TestResultRequest describes a test-result placeholder to create in the
// external trust system.
type TestResultRequest struct {
	TypeID         int64  `json:"typeId"`
	HospitalNumber string `json:"hospitalNumber"`
	PathwayName    string `json:"pathwayName"`
}

// TestResult is the trust system's record of a test result. ID is the
// opaque external reference stored on local ClinicalRequest rows.
type TestResult struct {
	ID             string `json:"id"`
	TypeID         int64  `json:"typeId"`
	HospitalNumber string `json:"hospitalNumber"`
	CurrentState   string `json:"currentState,omitempty"`
}

// TrustAdapter is the narrow contract the decision workflow depends on
type TrustAdapter interface {
	TestConnection(ctx context.Context, authToken string) error
	CreateTestResult(ctx context.Context, req *TestResultRequest, authToken string) (*TestResult, error)
	LoadTestResult(ctx context.Context, referenceID string, authToken string) (*TestResult, error)
}

// TrustAdapterClient talks to the external trust/hospital record system
type TrustAdapterClient struct {
	http    *HTTPClient
	baseURL string
	logger  Logger
}

var _ TrustAdapter = (*TrustAdapterClient)(nil)

// NewTrustAdapterClient creates a trust adapter client from config
func NewTrustAdapterClient(cfg *ClientConfig, logger Logger) *TrustAdapterClient {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &TrustAdapterClient{
		http:    NewHTTPClient(httpClient, logger),
		baseURL: cfg.TrustAdapterURL,
		logger:  logger,
	}
}

// TestConnection verifies the trust adapter is reachable with the given
// session token. Called before the decision workflow opens a transaction
// so a dead remote never costs local work.
func (c *TrustAdapterClient) TestConnection(ctx context.Context, authToken string) error {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/api/healthcheck", nil, authToken)
	if err != nil {
		return &CommunicationError{Op: "test connection", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &CommunicationError{
			Op:  "test connection",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return nil
}

// CreateTestResult creates a test-result placeholder in the trust system
// and returns the external reference. This MUST precede local
// ClinicalRequest creation: an orphaned remote placeholder is preferable
// to a local row pointing at a nonexistent remote record.
func (c *TrustAdapterClient) CreateTestResult(ctx context.Context, req *TestResultRequest, authToken string) (*TestResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal test result request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/api/testresult", bytes.NewReader(payload), authToken)
	if err != nil {
		return nil, &CommunicationError{Op: "create test result", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &CommunicationError{
			Op:  "create test result",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	result, err := decodeTestResult(resp.Body)
	if err != nil {
		return nil, &CommunicationError{Op: "create test result", Err: err}
	}

	c.logger.Debug("created remote test result",
		"reference_id", result.ID,
		"type_id", req.TypeID)

	return result, nil
}

// LoadTestResult fetches a test result by its external reference id
func (c *TrustAdapterClient) LoadTestResult(ctx context.Context, referenceID string, authToken string) (*TestResult, error) {
	url := fmt.Sprintf("%s/api/testresult/%s", c.baseURL, referenceID)

	resp, err := c.do(ctx, http.MethodGet, url, nil, authToken)
	if err != nil {
		return nil, &CommunicationError{Op: "load test result", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &CommunicationError{
			Op:  "load test result",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	result, err := decodeTestResult(resp.Body)
	if err != nil {
		return nil, &CommunicationError{Op: "load test result", Err: err}
	}

	return result, nil
}

// do executes one request with the session token and a correlation id
func (c *TrustAdapterClient) do(ctx context.Context, method, url string, body io.Reader, authToken string) (*http.Response, error) {
	ctx = WithSessionToken(ctx, authToken)

	resp, err := c.http.DoRequestWithHeaders(ctx, method, url, body, map[string]string{
		"X-Request-ID": uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func decodeTestResult(r io.Reader) (*TestResult, error) {
	var result TestResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.ID == "" {
		return nil, fmt.Errorf("response missing reference id")
	}
	return &result, nil
}
