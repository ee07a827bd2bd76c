package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCheckContentType(t *testing.T) {
	tests := []struct {
		name           string
		contentType    string
		expectedStatus int
	}{
		{name: "exact match", contentType: "application/json", expectedStatus: http.StatusOK},
		{name: "missing header", contentType: "", expectedStatus: http.StatusUnsupportedMediaType},
		{name: "wrong media type", contentType: "text/html", expectedStatus: http.StatusUnsupportedMediaType},
		{name: "parameters are not accepted", contentType: "application/json; charset=utf-8", expectedStatus: http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			r := gin.New()
			r.POST("/", func(c *gin.Context) {
				if !CheckContentType(c, zerolog.New(&logs), MediaTypeJSON) {
					return
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusUnsupportedMediaType {
				var body ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "Content-Type must be application/json", body.Message)
				assert.Equal(t, "Unsupported Media Type", body.Error)
				assert.Contains(t, logs.String(), "Invalid Content-Type")
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type request struct {
		Name  string `validate:"required,max=5"`
		Email string `validate:"omitempty,email"`
	}

	assert.Nil(t, ValidateRequest(request{Name: "Ann"}))

	errs := ValidateRequest(request{Email: "nope"})
	require.Len(t, errs, 2)
	assert.Equal(t, ValidationError{Field: "Name", Message: "This field is required", Type: "required"}, errs[0])
	assert.Equal(t, "Invalid email format", errs[1].Message)

	errs = ValidateRequest(request{Name: "Too long"})
	require.Len(t, errs, 1)
	assert.Equal(t, "max", errs[0].Type)
}

func TestValidateRequestRejectsNonStruct(t *testing.T) {
	tests := []struct {
		name string
		obj  any
	}{
		{name: "nil", obj: nil},
		{name: "string", obj: "Alice"},
		{name: "nil struct pointer", obj: (*struct{ Name string })(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateRequest(tt.obj)
			require.Len(t, errs, 1)
			assert.Empty(t, errs[0].Field)
			assert.Equal(t, "invalid", errs[0].Type)
			assert.NotEmpty(t, errs[0].Message)
		})
	}
}

func TestRespondWithValidationError(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		RespondWithValidationError(c, "Invalid Account", []ValidationError{{Field: "Name", Message: "This field is required", Type: "required"}})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{
		"status": 400,
		"error": "Bad Request",
		"message": "Invalid Account",
		"details": [{"field": "Name", "message": "This field is required", "type": "required"}]
	}`, w.Body.String())
}

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	r := gin.New()
	r.Use(LoggingMiddleware(zerolog.New(&logs)), Recovery(zerolog.New(&logs)))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "An internal error occurred")
	assert.Contains(t, logs.String(), "kaboom")
	assert.Contains(t, logs.String(), `"status":500`)
}
