package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Request sends a request with an optional JSON body through h
func Request(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	require.Zero(t, len(headers)%2, "headers are key/value pairs")
	for i := 0; i < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// JSON decodes the response body into T
func JSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "Failed to parse JSON response: %s", w.Body.String())
	return out
}

// CRMEnvelope is the {success, data, error, meta} response of the CRM API
type CRMEnvelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total   int64 `json:"total"`
		HasNext bool  `json:"hasNext"`
	} `json:"meta"`
}

// LogisticsEnvelope is the {code, status, data, message} response of the
// logistics API
type LogisticsEnvelope[T any] struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

// AssertCRMError checks status and error code of a CRM failure
func AssertCRMError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := JSON[CRMEnvelope[json.RawMessage]](t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, code, env.Error.Code)
}

// AssertLogisticsError checks the status and error envelope of a logistics
// failure
func AssertLogisticsError(t *testing.T, w *httptest.ResponseRecorder, status int) LogisticsEnvelope[json.RawMessage] {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := JSON[LogisticsEnvelope[json.RawMessage]](t, w)
	assert.Equal(t, status, env.Code)
	assert.Equal(t, "error", env.Status)
	assert.NotEmpty(t, env.Message)
	return env
}
