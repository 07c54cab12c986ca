package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
	"github.com/jwalitptl/dentalcare/pkg/validator"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes err as an error envelope. AppErrors keep their status
// and message; anything else is reported as an internal error and logged.
func RespondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal(err)
	}

	status := apperrors.HTTPStatus(appErr.Code)
	resp := NewErrorResponse(appErr.Message)

	var fields validator.Errors
	if errors.As(err, &fields) {
		resp.Data = fields
	}

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Int("code", int(appErr.Code)).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString("request_id")).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(status, resp)
}

// BindJSON decodes the request body into obj, replying 400 on failure.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondError(c, BodyError("invalid request body", err))
		return false
	}
	return true
}

// BodyError classifies a failed body read. Reads stopped by
// http.MaxBytesReader become 413, everything else is a bad request.
func BodyError(message string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.TooLarge(err)
	}
	return apperrors.BadRequest(message, err)
}
