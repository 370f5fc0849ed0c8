package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/atinyakov/go-qr-manager/internal/app/server"
	"github.com/atinyakov/go-qr-manager/internal/app/service"
	"github.com/atinyakov/go-qr-manager/internal/config"
	"github.com/atinyakov/go-qr-manager/internal/logger"
	"github.com/atinyakov/go-qr-manager/internal/repository"
	"github.com/atinyakov/go-qr-manager/internal/storage"

	_ "net/http/pprof"
)

var buildVersion string
var buildDate string
var buildCommit string

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)

	var s service.Storage

	log := logger.New()
	defer func() {
		_ = log.Log.Sync()
	}()

	err := log.Init("Info")
	zapLogger := log.Log
	if err != nil {
		panic(err)
	}

	if options.EnablePprof {
		go func() {
			zapLogger.Info("Starting pprof server", zap.String("addr", "localhost:6060"))
			if err := http.ListenAndServe("localhost:6060", nil); err != nil {
				zapLogger.Error("pprof server error", zap.Error(err))
			}
		}()
	}

	if options.DatabaseDSN != "" {
		zapLogger.Info("using db storage")
		db := repository.InitDB(options.DatabaseDSN, zapLogger)
		defer db.Close()
		s = repository.CreateQRRepository(db, zapLogger)
		zapLogger.Info("Database connected and tables ready.")
	} else if options.FilePath != "" {
		zapLogger.Info("using file storage", zap.String("filePath", options.FilePath))

		s, err = storage.NewFileStorage(options.FilePath, zapLogger)
		if err != nil {
			panic(err)
		}
	} else {
		zapLogger.Info("using in memory storage")

		s, err = storage.CreateMemoryStorage()
		if err != nil {
			panic(err)
		}
	}

	if options.APIToken == "" {
		zapLogger.Warn("API_TOKEN is not set, the management API will reject every request")
	}

	generator := service.NewShortIDGenerator(service.ShortIDLength)
	validator := service.NewValidator(options.Production)
	recordService := service.NewRecordService(s, generator, validator, zapLogger, options.BaseURL)
	auth := service.NewAuth(options.APIToken)

	r := server.Init(zapLogger, recordService, auth)

	if options.EnableHTTPS {
		manager := &autocert.Manager{
			// директория для хранения сертификатов
			Cache: autocert.DirCache("cache-dir"),
			// функция, принимающая Terms of Service издателя сертификатов
			Prompt: autocert.AcceptTOS,
		}
		// конструируем сервер с поддержкой TLS
		srv := &http.Server{
			Addr:    ":443",
			Handler: r,
			// для TLS-конфигурации используем менеджер сертификатов
			TLSConfig: manager.TLSConfig(),
		}
		zapLogger.Info("Server is running with TLS", zap.String("address", options.Address))
		if err := srv.ListenAndServeTLS("", ""); err != nil {
			panic(err)
		}
	} else {
		zapLogger.Info("Server is running", zap.String("address", options.Address))
		err = http.ListenAndServe(options.Address, r)

		if err != nil {
			panic(err)
		}
	}
}
