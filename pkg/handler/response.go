package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/yumyai/panva/logger"
	"github.com/yumyai/panva/pkg/handler/types"
	"github.com/yumyai/panva/pkg/model"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Encode response failed", zap.Error(err))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotInitialized), errors.Is(err, model.ErrEmptySelection):
		return http.StatusConflict
	case errors.Is(err, model.ErrGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidPosition),
		errors.Is(err, model.ErrInvalidDataIndex),
		errors.Is(err, model.ErrUnknownOperator),
		errors.Is(err, model.ErrInvalidFilter),
		errors.Is(err, model.ErrInvalidSorting),
		errors.Is(err, model.ErrInvalidReference):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
	} else {
		logger.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, types.ErrorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: msg})
}

// decodeBody reads a JSON body into v. With optional set an empty body is accepted.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	logger.Debug("Invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
	badRequest(w, "Invalid request body")
	return false
}

// mutate applies fn to the session and answers with the resulting view.
func (app *AppContext) mutate(w http.ResponseWriter, fn func(s *model.Session) error) {
	if err := app.Store.Do(fn); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app.Store.View())
}
