package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shaiso/rmqlink/internal/broker"
	"github.com/shaiso/rmqlink/internal/mq"
	"github.com/shaiso/rmqlink/internal/resolver"
)

// ErrorCode — код ошибки API.
type ErrorCode string

const (
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeConnectFailed ErrorCode = "CONNECT_FAILED"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse — структура ответа с ошибкой.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail — детали ошибки.
type ErrorDetail struct {
	Code      ErrorCode          `json:"code"`
	Message   string             `json:"message"`
	Diagnosis *DiagnosisResponse `json:"diagnosis,omitempty"`
}

// DataResponse — структура успешного ответа.
type DataResponse struct {
	Data any `json:"data"`
}

// ListResponse — структура ответа со списком.
type ListResponse struct {
	Data  any `json:"data"`
	Total int `json:"total,omitempty"`
}

// JSON отправляет JSON ответ.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Success отправляет успешный ответ с данными.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, DataResponse{Data: data})
}

// List отправляет ответ со списком.
func List(w http.ResponseWriter, data any, total int) {
	JSON(w, http.StatusOK, ListResponse{Data: data, Total: total})
}

// Error отправляет ответ с ошибкой.
func Error(w http.ResponseWriter, status int, code ErrorCode, message string) {
	JSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// BadRequest отправляет ошибку 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// NotFound отправляет ошибку 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// BadGateway отправляет ошибку 502 с диагностикой брокера.
func BadGateway(w http.ResponseWriter, cErr *mq.ConnectError) {
	d := DiagnosisFromMQ(cErr.Diagnosis)
	JSON(w, http.StatusBadGateway, ErrorResponse{
		Error: ErrorDetail{
			Code:      ErrCodeConnectFailed,
			Message:   cErr.Error(),
			Diagnosis: &d,
		},
	})
}

// InternalError отправляет ошибку 500.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}

// HandleEndpointError преобразует ошибку поиска или подключения endpoint в HTTP ответ.
func HandleEndpointError(w http.ResponseWriter, logger *slog.Logger, err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, broker.ErrUnknownEndpoint) ||
		errors.Is(err, broker.ErrUnknownBinding) ||
		errors.Is(err, resolver.ErrUnresolvedReference) {
		NotFound(w, err.Error())
		return true
	}

	var cErr *mq.ConnectError
	if errors.As(err, &cErr) {
		BadGateway(w, cErr)
		return true
	}

	InternalError(w, logger, err)
	return true
}
