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

type GetHandler struct {
	service service.RecordServiceIface
	logger  *zap.Logger
}

func NewGet(s service.RecordServiceIface, l *zap.Logger) *GetHandler {
	return &GetHandler{
		service: s,
		logger:  l,
	}
}

// HandleList handles GET requests listing all records with previews.
func (h *GetHandler) HandleList(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	records, err := h.service.List(ctx)
	if err != nil {
		h.logger.Error("list failed", zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	responses := make([]models.RecordResponse, 0, len(records))
	for i := range records {
		response, err := recordToResponse(h.service, &records[i])
		if err != nil {
			h.logger.Error("preview rendering failed", zap.Error(err))
			http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		responses = append(responses, *response)
	}

	body, err := json.Marshal(responses)
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

// HandleGetByID handles GET requests for a single record.
func (h *GetHandler) HandleGetByID(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	id := chi.URLParam(req, "id")

	record, err := h.service.Get(ctx, id)
	if err != nil {
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

// HandleImage handles GET requests downloading the QR image of a record.
func (h *GetHandler) HandleImage(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	id := chi.URLParam(req, "id")

	record, err := h.service.Get(ctx, id)
	if err != nil {
		writeServiceError(res, err)
		return
	}

	image, err := h.service.Image(record)
	if err != nil {
		h.logger.Error("image rendering failed", zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	res.Header().Set("Content-Type", "image/png")
	res.Header().Set("Content-Disposition", `attachment; filename="qr-`+record.ShortID+`.png"`)
	res.WriteHeader(http.StatusOK)

	if _, writeErr := res.Write(image); writeErr != nil {
		res.WriteHeader(http.StatusInternalServerError)
	}
}

// HandlePing reports storage health.
func (h *GetHandler) HandlePing(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	if err := h.service.PingContext(ctx); err != nil {
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	res.WriteHeader(http.StatusOK)
}
