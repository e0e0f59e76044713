// Package respond writes the advisory API response envelope.
//
// Every successful response carries processing time and an explicit
// advisory marker so callers cannot mistake engine output for an
// enforcement decision.
package respond

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soukly/nucleus/internal/validation"
)

// Meta accompanies every successful response.
type Meta struct {
	ProcessingTimeMs float64 `json:"processingTimeMs"`
	Advisory         bool    `json:"advisory"`
}

// Envelope is the uniform success wrapper.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    Meta `json:"meta"`
}

// OK writes a 200 with the standard envelope.
func OK(c *gin.Context, data any, start time.Time) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Meta: Meta{
			ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
			Advisory:         true,
		},
	})
}

// Error writes a failure response with a machine-readable code.
func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   code,
		"message": message,
	})
}

// Invalid writes a 400 carrying per-field validation details.
func Invalid(c *gin.Context, errs validation.ValidationErrors) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "validation_failed",
		"message": errs.Error(),
		"details": errs,
	})
}
