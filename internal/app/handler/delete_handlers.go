package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/go-qr-manager/internal/app/service"
	"github.com/atinyakov/go-qr-manager/internal/models"
)

type DeleteHandler struct {
	service service.RecordServiceIface
	logger  *zap.Logger
}

func NewDelete(s service.RecordServiceIface, l *zap.Logger) *DeleteHandler {
	return &DeleteHandler{
		service: s,
		logger:  l,
	}
}

// HandleDelete handles DELETE requests removing a single record. The
// record's short id is retired, never reissued.
func (h *DeleteHandler) HandleDelete(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	id := chi.URLParam(req, "id")

	if err := h.service.Delete(ctx, id); err != nil {
		h.logger.Info("delete failed", zap.Error(err))
		writeServiceError(res, err)
		return
	}

	writeResult(res)
}

// HandleClearAll handles DELETE requests removing every record at once.
func (h *DeleteHandler) HandleClearAll(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	if err := h.service.DeleteAll(ctx); err != nil {
		h.logger.Error("clear-all failed", zap.Error(err))
		writeServiceError(res, err)
		return
	}

	writeResult(res)
}

func writeResult(res http.ResponseWriter) {
	body, _ := json.Marshal(models.ResultResponse{Result: "ok"})

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusOK)

	if _, writeErr := res.Write(body); writeErr != nil {
		res.WriteHeader(http.StatusInternalServerError)
	}
}
