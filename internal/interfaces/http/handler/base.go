// Package handler implements the HTTP endpoints of the console API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/bizconsole/backend/internal/infrastructure/logger"
	"github.com/bizconsole/backend/internal/interfaces/http/dto"
	"github.com/bizconsole/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// responder writes an error body in one of the two API envelopes
type responder interface {
	Error(c *gin.Context, status int, code, message string)
}

// BaseHandler renders the {success, data, error, meta} envelope
type BaseHandler struct{}

// Success sends a 200 with data
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 with data
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with an explicit status
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// HandleError converts domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	handleError(c, h, err)
}

// LogisticsBase renders the {code, status, data, message} envelope
type LogisticsBase struct{}

// OK sends a success envelope with the given status
func (h *LogisticsBase) OK(c *gin.Context, status int, data any) {
	c.JSON(status, dto.Envelope{Code: status, Status: dto.StatusSuccess, Data: data})
}

// Error sends an error envelope; the code only matters to the status
func (h *LogisticsBase) Error(c *gin.Context, status int, _ string, message string) {
	c.JSON(status, dto.Envelope{Code: status, Status: dto.StatusError, Message: message})
}

// HandleError converts domain errors to HTTP responses
func (h *LogisticsBase) HandleError(c *gin.Context, err error) {
	handleError(c, h, err)
}

func handleError(c *gin.Context, r responder, err error) {
	if err == nil {
		return
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		r.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	logger.L(c.Request.Context()).Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	r.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// bindJSON decodes the body into req. Validation failures list the rejected
// fields; anything else is reported as malformed JSON.
func bindJSON(c *gin.Context, r responder, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		middleware.HandleValidationError(c, err)
		return false
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		r.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is empty")
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		r.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid JSON: "+err.Error())
	default:
		r.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, err.Error())
	}
	return false
}

// parseID reads a uuid path parameter
func parseID(c *gin.Context, r responder, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		r.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid "+param+" format")
		return uuid.Nil, false
	}
	return id, true
}

// listQuery reads page, limit, sortBy, sortOrder, search and field filters
func listQuery(c *gin.Context) query.Query {
	return query.FromValues(c.Request.URL.Query())
}
