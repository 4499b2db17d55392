package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/middleware"
)

// statusFor maps an error code onto its HTTP status.
func statusFor(code string) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeMalformedInput, domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotReady, domain.CodeStoreUnavailable, domain.CodeCatalogUnavailable:
		return http.StatusServiceUnavailable
	case domain.CodeAuthentication:
		return http.StatusUnauthorized
	case domain.CodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as the JSON error envelope.
func (s *Server) respondError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	status := statusFor(code)

	message := err.Error()
	var de *domain.DisputeError
	if errors.As(err, &de) {
		message = de.Message
	}
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).WithField("correlation_id", c.GetString(middleware.CorrelationIDKey)).Error("Request failed")
		message = "internal server error"
	}

	middleware.AbortWithError(c, status, code, message)
}

// badRequest reports a body or query binding failure.
func (s *Server) badRequest(c *gin.Context, err error) {
	middleware.AbortWithError(c, http.StatusBadRequest, domain.CodeMalformedInput, err.Error())
}
