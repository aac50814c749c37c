package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polyia/polyia-backend/internal/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError maps an error from the service layer onto the HTTP
// status taxonomy. Anything that is not an apierr.Error becomes a 500.
func RespondAPIError(c *gin.Context, err error) {
	if apiErr, ok := apierr.From(err); ok {
		RespondError(c, apiErr.Status, apiErr.Code, err)
		return
	}
	RespondError(c, http.StatusInternalServerError, "error_interno", err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
