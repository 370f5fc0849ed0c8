package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/atinyakov/go-qr-manager/internal/app/service"
	"github.com/atinyakov/go-qr-manager/internal/mocks"
	"github.com/atinyakov/go-qr-manager/internal/storage"
)

func resolveRequest(shortID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/q/"+shortID, nil)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{"shortID"},
			Values: []string{shortID},
		},
	}))
}

func TestHandleResolve_Link(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockRecordServiceIface(ctrl)
	handler := NewResolve(mockService, zap.NewNop())

	mockService.EXPECT().Resolve(gomock.Any(), "abc12345").
		Return(&service.Resolution{RedirectURL: "https://example.com/landing"}, nil)

	w := httptest.NewRecorder()
	handler.HandleResolve(w, resolveRequest("abc12345"))

	resp := w.Result()
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.com/landing", resp.Header.Get("Location"))
}

func TestHandleResolve_VCard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockRecordServiceIface(ctrl)
	handler := NewResolve(mockService, zap.NewNop())

	body := []byte("BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Jane Doe\r\nN:Doe;Jane;;;\r\nEND:VCARD\r\n")
	mockService.EXPECT().Resolve(gomock.Any(), "vcard001").
		Return(&service.Resolution{
			Body:        body,
			Filename:    "Jane_Doe.vcf",
			ContentType: service.VCardContentType,
		}, nil)

	w := httptest.NewRecorder()
	handler.HandleResolve(w, resolveRequest("vcard001"))

	resp := w.Result()
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, service.VCardContentType, resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jane_Doe.vcf"`, resp.Header.Get("Content-Disposition"))

	got, _ := io.ReadAll(resp.Body)
	assert.Equal(t, body, got)
}

func TestHandleResolve_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockRecordServiceIface(ctrl)
	handler := NewResolve(mockService, zap.NewNop())

	tests := []struct {
		name    string
		shortID string
		err     error
	}{
		{name: "unknown id", shortID: "zzzz9999", err: storage.ErrNotFound},
		{name: "malformed id looks the same", shortID: "x", err: storage.ErrNotFound},
		{name: "internal error is masked", shortID: "abc12345", err: assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService.EXPECT().Resolve(gomock.Any(), tt.shortID).Return(nil, tt.err)

			w := httptest.NewRecorder()
			handler.HandleResolve(w, resolveRequest(tt.shortID))

			resp := w.Result()
			defer resp.Body.Close()

			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}
