// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"printer-server/internal/model"
)

// ErrorBody is the bare body used for routing and panic failures
type ErrorBody struct {
	Error string `json:"error"`
}

// EnvelopeResponse sends a handler envelope as is
func EnvelopeResponse(c *gin.Context, statusCode int, response model.Response) {
	c.JSON(statusCode, response)
}

// SuccessResponse sends a successful envelope
func SuccessResponse(c *gin.Context, statusCode int, message string, data map[string]interface{}) {
	c.JSON(statusCode, model.Success(message, data))
}

// ErrorResponse sends a failed envelope. Error details stay in the logs.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, model.Failure(message))
}

// ValidationErrorResponse sends a 400 envelope listing the failed fields
func ValidationErrorResponse(c *gin.Context, err error) {
	response := model.Failure(err.Error())

	var validation *model.ValidationError
	if errors.As(err, &validation) {
		response.Message = "Invalid document"
		response.Data = map[string]interface{}{
			"validation_errors": validation.Fields,
		}
	}

	c.JSON(http.StatusBadRequest, response)
}

// AbortWithError stops the chain with a bare {"error": message} body
func AbortWithError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Error: message})
}

// GetRequestID extracts request ID from context
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}
