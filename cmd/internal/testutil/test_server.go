package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServer - gin-роутер API под httptest.
type TestServer struct {
	Router *gin.Engine
}

// NewTestServer оборачивает готовый роутер; nil - пустой роутер для тестов middleware.
func NewTestServer(router *gin.Engine) *TestServer {
	gin.SetMode(gin.TestMode)
	if router == nil {
		router = gin.New()
	}
	return &TestServer{
		Router: router,
	}
}

// MakeRequest сериализует body в JSON и прогоняет запрос через роутер.
func (s *TestServer) MakeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	headers map[string]string,
) *httptest.ResponseRecorder {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	require.NoError(t, err, "Failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	return w
}

// AssertResponse проверяет статус и, если нужно, разбирает JSON в target.
func AssertResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()

	require.Equal(t, expectedStatus, w.Code, "Unexpected status code")

	if target != nil && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "response body")
	}
}

// AssertErrorResponse ожидает {"error": "..."} с подстрокой expectedMessage.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	t.Helper()

	require.Equal(t, expectedStatus, w.Code, "Unexpected status code")

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "response body")

	if expectedMessage != "" {
		errVal, ok := response["error"].(string)
		require.True(t, ok, "Expected 'error' field to be a string, got: %T", response["error"])
		assert.Contains(t, errVal, expectedMessage)
	}
}

func (s *TestServer) MakeGetRequest(t *testing.T, path string, headers map[string]string) *httptest.ResponseRecorder {
	return s.MakeRequest(t, http.MethodGet, path, nil, headers)
}

func (s *TestServer) MakePostRequest(t *testing.T, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	return s.MakeRequest(t, http.MethodPost, path, body, headers)
}

func (s *TestServer) MakePutRequest(t *testing.T, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	return s.MakeRequest(t, http.MethodPut, path, body, headers)
}

func (s *TestServer) MakeDeleteRequest(t *testing.T, path string, headers map[string]string) *httptest.ResponseRecorder {
	return s.MakeRequest(t, http.MethodDelete, path, nil, headers)
}

// WithServiceKey - заголовок Authorization для /internal.
func WithServiceKey(token string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + token,
	}
}
