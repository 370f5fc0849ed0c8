package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/go-qr-manager/internal/app/service"
)

type ResolveHandler struct {
	service service.RecordServiceIface
	logger  *zap.Logger
}

func NewResolve(s service.RecordServiceIface, l *zap.Logger) *ResolveHandler {
	return &ResolveHandler{
		service: s,
		logger:  l,
	}
}

// HandleResolve is the public resolution endpoint. Every lookup failure is
// reported as the same generic not-found response, so a malformed short id
// is indistinguishable from an unseen one.
func (h *ResolveHandler) HandleResolve(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	shortID := chi.URLParam(req, "shortID")

	resolution, err := h.service.Resolve(ctx, shortID)
	if err != nil {
		h.logger.Info("resolution failed", zap.String("shortID", shortID), zap.Error(err))
		http.Error(res, "not found", http.StatusNotFound)
		return
	}

	if resolution.RedirectURL != "" {
		res.Header().Set("Location", resolution.RedirectURL)
		res.WriteHeader(http.StatusFound)
		return
	}

	res.Header().Set("Content-Type", resolution.ContentType)
	res.Header().Set("Content-Disposition", `attachment; filename="`+resolution.Filename+`"`)
	res.WriteHeader(http.StatusOK)

	if _, writeErr := res.Write(resolution.Body); writeErr != nil {
		res.WriteHeader(http.StatusInternalServerError)
	}
}
