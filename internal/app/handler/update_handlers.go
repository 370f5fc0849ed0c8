package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/go-qr-manager/internal/app/service"
	"github.com/atinyakov/go-qr-manager/internal/models"
)

type UpdateHandler struct {
	service service.RecordServiceIface
	logger  *zap.Logger
}

func NewUpdate(s service.RecordServiceIface, l *zap.Logger) *UpdateHandler {
	return &UpdateHandler{
		service: s,
		logger:  l,
	}
}

// HandleUpdate handles PUT requests replacing a record's kind and payload.
// The short id and creation time are preserved.
func (h *UpdateHandler) HandleUpdate(res http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	var request models.RecordRequest

	err := decodeJSONBody(res, req, &request)
	if err != nil {
		var mr *malformedRequest
		if errors.As(err, &mr) {
			http.Error(res, mr.msg, mr.status)
			return
		}
		h.logger.Error(err.Error())
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	record, err := h.service.Update(req.Context(), id, request.Type, request.Data)
	if err != nil {
		h.logger.Info("update failed", zap.Error(err))
		writeServiceError(res, err)
		return
	}

	response, err := recordToResponse(h.service, record)
	if err != nil {
		h.logger.Error("preview rendering failed", zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	body, err := json.Marshal(response)
	if err != nil {
		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusOK)

	if _, writeErr := res.Write(body); writeErr != nil {
		res.WriteHeader(http.StatusInternalServerError)
	}
}
