package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// MediaTypeJSON is the only request body type the API accepts.
const MediaTypeJSON = "application/json"

// CheckContentType aborts the request with 415 unless the Content-Type
// header equals mediaType exactly. A missing header is a mismatch.
func CheckContentType(c *gin.Context, logger zerolog.Logger, mediaType string) bool {
	contentType := c.GetHeader("Content-Type")
	if contentType != "" && contentType == mediaType {
		return true
	}
	logger.Error().Str("content_type", contentType).Msg("Invalid Content-Type")
	RespondWithError(c, http.StatusUnsupportedMediaType, "Content-Type must be "+mediaType)
	return false
}
