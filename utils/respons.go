package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status    bool        `json:"status"`
	Message   string      `json:"message"`
	ErrorKind ErrorKind   `json:"error_kind,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondAppError picks the status code from the error kind and exposes the
// kind to the client. Storage details are logged, not returned.
func RespondAppError(c *gin.Context, err error) {
	kind := KindOf(err)
	message := err.Error()

	var appErr *AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if kind == KindStorage || kind == KindPartialFailure {
		ErrorLogger.WithField("path", c.Request.URL.Path).Errorf("%v", err)
	}

	c.JSON(StatusForKind(kind), JSONResponse{
		Status:    false,
		Message:   message,
		ErrorKind: kind,
	})
}
