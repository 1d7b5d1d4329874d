package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"roster-scraper/extractor"
	"roster-scraper/internal/types"
)

// APIRequest represents the request body for the API
type APIRequest struct {
	URL            string `json:"url" validate:"required,url"`
	DownloadImages bool   `json:"downloadImages"`
}

// APIResponse represents the response from the API
type APIResponse struct {
	Success bool                `json:"success"`
	Data    *types.ScrapeResult `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// Server holds the API server configuration
type Server struct {
	logger   *logrus.Logger
	config   *types.Config
	validate *validator.Validate
}

// NewServer creates a new API server
func NewServer(logger *logrus.Logger, config *types.Config) *Server {
	return &Server{
		logger:   logger,
		config:   config,
		validate: validator.New(),
	}
}

// Routes builds the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/scrape", s.handleScrape)
	return r
}

// handleScrape scrapes the roster of the requested team page
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req APIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if err := s.validate.Struct(req); err != nil {
		s.sendError(w, "A valid url is required", http.StatusBadRequest)
		return
	}

	s.logger.WithField("request_id", middleware.GetReqID(r.Context())).Infof("API request received for %s", req.URL)

	// Each request gets its own copy so image settings do not leak between requests
	config := *s.config
	config.DownloadImages = req.DownloadImages

	rosterExtractor := extractor.NewRosterExtractor(&config, s.logger)
	defer rosterExtractor.Close()

	result, _, err := rosterExtractor.Scrape(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, types.ErrNoData) {
			s.sendError(w, err.Error(), http.StatusBadGateway)
			return
		}
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.sendJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	s.sendJSON(w, statusCode, APIResponse{Success: false, Error: message})
}

func (s *Server) sendJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

func newLogger() *logrus.Logger {
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	logger := newLogger()

	config := types.DefaultConfig()
	if dir := os.Getenv("IMAGES_DIR"); dir != "" {
		config.ImagesDir = dir
	}
	if err := config.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	// Get port from environment variable, default to 8080
	serverPort := "8080"
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		serverPort = envPort
	}

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", serverPort),
		Handler:     NewServer(logger, config).Routes(),
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting API server on port %s", serverPort)
		logger.Info("Available endpoints:")
		logger.Info("  POST /scrape - Scrape the roster of a team page")
		logger.Info("  GET  /health - Health check")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Shutdown error: %v", err)
	}
}
