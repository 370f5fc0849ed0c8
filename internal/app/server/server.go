// Package server assembles the chi router out of the handlers and middleware.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/go-qr-manager/internal/app/handler"
	"github.com/atinyakov/go-qr-manager/internal/app/service"
	"github.com/atinyakov/go-qr-manager/internal/middleware"
)

func Init(logger *zap.Logger, svc service.RecordServiceIface, auth service.AuthIface) *chi.Mux {
	postHandler := handler.NewPost(svc, auth, logger)
	getHandler := handler.NewGet(svc, logger)
	updateHandler := handler.NewUpdate(svc, logger)
	deleteHandler := handler.NewDelete(svc, logger)
	resolveHandler := handler.NewResolve(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.WithGZIPPost)

	// public resolution path, no credentials
	r.Get("/q/{shortID}", resolveHandler.HandleResolve)

	r.Get("/ping", getHandler.HandlePing)
	r.Post("/api/auth/token", postHandler.HandleToken)

	r.Route("/api/qr", func(r chi.Router) {
		r.Use(middleware.WithAuth(auth))
		r.Use(middleware.WithGZIPGet)

		r.Get("/", getHandler.HandleList)
		r.Post("/", postHandler.HandleCreate)
		r.Delete("/clear-all", deleteHandler.HandleClearAll)
		r.Get("/{id}", getHandler.HandleGetByID)
		r.Put("/{id}", updateHandler.HandleUpdate)
		r.Delete("/{id}", deleteHandler.HandleDelete)
		r.Get("/{id}/image", getHandler.HandleImage)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Route not found", http.StatusNotFound)
	})

	return r
}
