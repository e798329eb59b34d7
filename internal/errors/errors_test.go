package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croplens/api/internal/logger"
	"github.com/croplens/api/internal/middleware"
)

func init() {
	// Set Gin to test mode to suppress logs during tests
	gin.SetMode(gin.TestMode)
}

// setupTestContext creates a test Gin context with logger and request ID in context.
func setupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	log := logger.New("test")
	c.Set("logger", log)
	c.Set(middleware.RequestIDKey, "test-request-id")

	return c, w
}

// envelopeResponse is the decoded failure envelope.
type envelopeResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func parseEnvelope(t *testing.T, body *bytes.Buffer) envelopeResponse {
	var response envelopeResponse
	err := json.Unmarshal(body.Bytes(), &response)
	require.NoError(t, err, "Failed to parse envelope JSON")
	return response
}

func TestBadRequest(t *testing.T) {
	c, w := setupTestContext()

	BadRequest(c, "polygon ring must have at least 4 points, got 3")

	assert.Equal(t, http.StatusBadRequest, w.Code, "Expected status 400 Bad Request")

	response := parseEnvelope(t, w.Body)
	assert.False(t, response.Success, "Expected success=false")
	assert.Equal(t, "polygon ring must have at least 4 points, got 3", response.Message)
	assert.Empty(t, response.Data, "Failure envelope must not carry data")

	_, err := time.Parse(time.RFC3339, response.Timestamp)
	assert.NoError(t, err, "Expected RFC3339 timestamp")
}

func TestInternalServerError(t *testing.T) {
	c, w := setupTestContext()

	testErr := errors.New("compute endpoint returned 503")
	InternalServerError(c, "Field analysis failed; please try again", testErr)

	assert.Equal(t, http.StatusInternalServerError, w.Code, "Expected status 500 Internal Server Error")

	response := parseEnvelope(t, w.Body)
	assert.False(t, response.Success, "Expected success=false")
	assert.Equal(t, "Field analysis failed; please try again", response.Message)
	assert.Empty(t, response.Data, "Failure envelope must not carry data")

	// The underlying error is logged, never surfaced.
	assert.NotContains(t, w.Body.String(), "503")
}

func TestValidationError(t *testing.T) {
	c, w := setupTestContext()

	type TestStruct struct {
		Limit int `validate:"required,gte=1"`
	}

	validate := validator.New()
	err := validate.Struct(TestStruct{Limit: 0})
	require.Error(t, err, "Expected validation to fail")

	validationErrors, ok := err.(validator.ValidationErrors)
	require.True(t, ok, "Expected validator.ValidationErrors")

	ValidationError(c, validationErrors)

	assert.Equal(t, http.StatusBadRequest, w.Code, "Expected status 400 Bad Request")

	response := parseEnvelope(t, w.Body)
	assert.False(t, response.Success, "Expected success=false")
	assert.Contains(t, response.Message, "Validation failed")
	assert.Contains(t, response.Message, "Limit")
}

func TestFormatValidationError(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		param    string
		expected string
	}{
		{
			name:     "required",
			tag:      "required",
			param:    "",
			expected: "this field is required",
		},
		{
			name:     "min",
			tag:      "min",
			param:    "5",
			expected: "value is too small (minimum: 5)",
		},
		{
			name:     "max",
			tag:      "max",
			param:    "100",
			expected: "value is too large (maximum: 100)",
		},
		{
			name:     "gte",
			tag:      "gte",
			param:    "1",
			expected: "must be greater than or equal to 1",
		},
		{
			name:     "lte",
			tag:      "lte",
			param:    "100",
			expected: "must be less than or equal to 100",
		},
		{
			name:     "oneof",
			tag:      "oneof",
			param:    "Polygon MultiPolygon",
			expected: "must be one of: Polygon MultiPolygon",
		},
		{
			name:     "unknown",
			tag:      "unknown_tag",
			param:    "",
			expected: "validation failed for tag: unknown_tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockErr := &mockFieldError{
				tag:   tt.tag,
				param: tt.param,
			}

			result := formatValidationError(mockErr)
			assert.Equal(t, tt.expected, result, "Expected correct validation error message")
		})
	}
}

func TestErrorResponseWithoutContext(t *testing.T) {
	// Error helpers must work even without logger/request ID in context.
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	BadRequest(c, "bad input")

	assert.Equal(t, http.StatusBadRequest, w.Code, "Expected status 400 even without context")

	response := parseEnvelope(t, w.Body)
	assert.False(t, response.Success)
	assert.Equal(t, "bad input", response.Message)
}

// mockFieldError is a mock implementation of validator.FieldError for testing.
type mockFieldError struct {
	tag   string
	param string
}

func (m *mockFieldError) Tag() string                    { return m.tag }
func (m *mockFieldError) ActualTag() string              { return m.tag }
func (m *mockFieldError) Namespace() string              { return "" }
func (m *mockFieldError) StructNamespace() string        { return "" }
func (m *mockFieldError) Field() string                  { return "TestField" }
func (m *mockFieldError) StructField() string            { return "TestField" }
func (m *mockFieldError) Value() interface{}             { return nil }
func (m *mockFieldError) Param() string                  { return m.param }
func (m *mockFieldError) Kind() reflect.Kind             { return reflect.String }
func (m *mockFieldError) Type() reflect.Type             { return nil }
func (m *mockFieldError) Translate(ut.Translator) string { return "" }
func (m *mockFieldError) Error() string                  { return "" }
