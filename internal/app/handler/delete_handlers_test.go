package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/atinyakov/go-qr-manager/internal/mocks"
	"github.com/atinyakov/go-qr-manager/internal/storage"
)

func TestHandleDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockRecordServiceIface(ctrl)
	handler := NewDelete(mockService, zap.NewNop())

	t.Run("deleted", func(t *testing.T) {
		mockService.EXPECT().Delete(gomock.Any(), "id-1").Return(nil)

		w := httptest.NewRecorder()
		handler.HandleDelete(w, requestWithID(http.MethodDelete, "/api/qr/id-1", "id-1"))

		resp := w.Result()
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"result":"ok"}`, string(body))
	})

	t.Run("not found", func(t *testing.T) {
		mockService.EXPECT().Delete(gomock.Any(), "missing").Return(storage.ErrNotFound)

		w := httptest.NewRecorder()
		handler.HandleDelete(w, requestWithID(http.MethodDelete, "/api/qr/missing", "missing"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleClearAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockRecordServiceIface(ctrl)
	handler := NewDelete(mockService, zap.NewNop())

	t.Run("cleared", func(t *testing.T) {
		mockService.EXPECT().DeleteAll(gomock.Any()).Return(nil)

		w := httptest.NewRecorder()
		handler.HandleClearAll(w, httptest.NewRequest(http.MethodDelete, "/api/qr/clear-all", nil))

		resp := w.Result()
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"result":"ok"}`, string(body))
	})

	t.Run("storage failure", func(t *testing.T) {
		mockService.EXPECT().DeleteAll(gomock.Any()).Return(assert.AnError)

		w := httptest.NewRecorder()
		handler.HandleClearAll(w, httptest.NewRequest(http.MethodDelete, "/api/qr/clear-all", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
