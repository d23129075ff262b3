package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutqapp/nutq-backend/internal/apierr"
)

// RespondOK wraps the payload fields in the success envelope. Payload keys
// are merged at the top level next to "success".
func RespondOK(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// RespondError maps the error to its HTTP status and emits the failure
// envelope. Unclassified errors become opaque 500s.
func RespondError(c *gin.Context, err error) {
	status := apierr.Status(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Server error"
	}
	c.JSON(status, gin.H{"success": false, "message": message})
}
