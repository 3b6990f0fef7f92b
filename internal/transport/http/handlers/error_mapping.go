package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorCase binds one sentinel error to its HTTP status and client message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError writes the response for a service error: the first
// matching case wins, anything unmatched gets the fallback. Messages stay
// generic so internals never leak to clients.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, known := range cases {
		if known.Err != nil && errors.Is(err, known.Err) {
			c.JSON(known.Status, NewErrorResponse(c, known.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
