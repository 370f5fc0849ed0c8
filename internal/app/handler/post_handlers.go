package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/go-qr-manager/internal/app/service"
	"github.com/atinyakov/go-qr-manager/internal/models"
)

type PostHandler struct {
	service service.RecordServiceIface
	auth    service.AuthIface
	logger  *zap.Logger
}

func NewPost(s service.RecordServiceIface, auth service.AuthIface, l *zap.Logger) *PostHandler {
	return &PostHandler{
		service: s,
		auth:    auth,
		logger:  l,
	}
}

// HandleCreate handles POST requests creating a new record.
func (h *PostHandler) HandleCreate(res http.ResponseWriter, req *http.Request) {
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

	record, err := h.service.Create(req.Context(), request.Type, request.Data)
	if err != nil {
		h.logger.Info("create failed", zap.Error(err))
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
	res.WriteHeader(http.StatusCreated)

	if _, writeErr := res.Write(body); writeErr != nil {
		res.WriteHeader(http.StatusInternalServerError)
	}
}

// HandleToken exchanges the shared management secret for a bearer token.
func (h *PostHandler) HandleToken(res http.ResponseWriter, req *http.Request) {
	var request models.TokenRequest

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

	if !h.auth.VerifyAPIKey(request.Key) {
		http.Error(res, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	token, err := h.auth.BuildJWTString()
	if err != nil {
		h.logger.Error("token signing failed", zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	body, _ := json.Marshal(models.TokenResponse{Token: token})

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusOK)

	if _, writeErr := res.Write(body); writeErr != nil {
		res.WriteHeader(http.StatusInternalServerError)
	}
}
