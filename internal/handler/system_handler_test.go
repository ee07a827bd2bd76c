package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSystemHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSystemHandler()
	r.GET("/health", h.Health)
	r.GET("/", h.Index)

	tests := []struct {
		name         string
		path         string
		expectedBody string
	}{
		{name: "health", path: "/health", expectedBody: `{"status":"OK"}`},
		{name: "index", path: "/", expectedBody: `{"name":"Account REST API Service","version":"1.0"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
