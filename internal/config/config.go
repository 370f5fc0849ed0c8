// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables, .env
// files and an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string `json:"address"`

	// BaseURL is the external origin resolution URLs are built from.
	BaseURL string `json:"base_url"`

	// FilePath is the path to the storage snapshot file.
	FilePath string `json:"file_path"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `json:"database_dsn"`

	// APIToken is the shared secret guarding the management API.
	APIToken string `json:"api_token"`

	// Production enables the stricter link validation mode that rejects
	// loopback and private-network destinations.
	Production bool `json:"production"`

	// EnablePprof indicates whether to enable pprof for profiling.
	EnablePprof bool `json:"enable_pprof"`

	// EnableHTTPS indicates whether to enable https.
	EnableHTTPS bool `json:"enable_https"`

	// Config is the path of an optional JSON config file.
	Config string `json:"-"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Address, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.BaseURL, "b", "http://localhost:8080", "external base url")
	flag.StringVar(&options.FilePath, "f", "", "path to storage file")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.APIToken, "t", "", "management api token")
	flag.BoolVar(&options.Production, "prod", false, "enable production validation mode")
	flag.BoolVar(&options.EnablePprof, "p", false, "enable pprof")
	flag.BoolVar(&options.EnableHTTPS, "s", false, "enable https")
	flag.StringVar(&options.Config, "c", "", "path to json config file")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. Environment variables win over flags; the JSON
// config file fills in what neither set.
func Parse() *Options {
	// .env values become plain environment variables, existing ones win
	_ = godotenv.Load()

	flag.Parse()

	if address := os.Getenv("SERVER_ADDRESS"); address != "" {
		options.Address = address
	}

	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		options.BaseURL = baseURL
	}

	if storagePath := os.Getenv("FILE_STORAGE_PATH"); storagePath != "" {
		options.FilePath = storagePath
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}

	if token := os.Getenv("API_TOKEN"); token != "" {
		options.APIToken = token
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		options.Production = env == "production"
	}

	if enableHTTPS := os.Getenv("ENABLE_HTTPS"); enableHTTPS != "" {
		httpsMode, err := strconv.ParseBool(enableHTTPS)
		if err != nil {
			options.EnableHTTPS = false
		}

		options.EnableHTTPS = httpsMode
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		applyConfigFile(options.Config)
	}

	return options
}

// applyConfigFile loads the JSON config file over the current options.
// Explicitly set flags keep their values.
func applyConfigFile(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}

	fileOptions := Options{}
	if err := json.Unmarshal(content, &fileOptions); err != nil {
		return
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	if !set["a"] && os.Getenv("SERVER_ADDRESS") == "" && fileOptions.Address != "" {
		options.Address = fileOptions.Address
	}
	if !set["b"] && os.Getenv("BASE_URL") == "" && fileOptions.BaseURL != "" {
		options.BaseURL = fileOptions.BaseURL
	}
	if !set["f"] && os.Getenv("FILE_STORAGE_PATH") == "" && fileOptions.FilePath != "" {
		options.FilePath = fileOptions.FilePath
	}
	if !set["d"] && os.Getenv("DATABASE_DSN") == "" && fileOptions.DatabaseDSN != "" {
		options.DatabaseDSN = fileOptions.DatabaseDSN
	}
	if !set["t"] && os.Getenv("API_TOKEN") == "" && fileOptions.APIToken != "" {
		options.APIToken = fileOptions.APIToken
	}
	if !set["prod"] && os.Getenv("APP_ENV") == "" && fileOptions.Production {
		options.Production = true
	}
	if !set["p"] && fileOptions.EnablePprof {
		options.EnablePprof = true
	}
	if !set["s"] && os.Getenv("ENABLE_HTTPS") == "" && fileOptions.EnableHTTPS {
		options.EnableHTTPS = true
	}
}
