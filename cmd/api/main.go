package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/dkovalev/transactions-api/internal/config"
	"github.com/dkovalev/transactions-api/internal/filestore"
	"github.com/dkovalev/transactions-api/internal/handler"
	"github.com/dkovalev/transactions-api/internal/integrations/cbr"
	"github.com/dkovalev/transactions-api/internal/middleware"
	"github.com/dkovalev/transactions-api/internal/repository"
	"github.com/dkovalev/transactions-api/internal/service"
	"github.com/dkovalev/transactions-api/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	uploads, err := filestore.NewStore(cfg.UploadDir, logger)
	if err != nil {
		logger.Fatalf("Failed to init upload store: %v", err)
	}
	var notifier service.Notifier
	if cfg.SMTPHost != "" {
		notifier = email.NewSender(cfg, logger)
	}
	svc := service.NewService(repo, repo, repo, uploads, notifier, logger, cfg)
	h := handler.NewHandler(svc, uploads)
	cbrClient := cbr.NewCBRClient(cfg, logger)

	// Sweep stale uploads hourly
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		uploads.RemoveOlderThan(cfg.UploadMaxAge)
	}); err != nil {
		logger.Fatalf("Failed to schedule upload cleanup: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/transactions").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("", h.CreateTransaction).Methods("POST")
	authRouter.HandleFunc("", h.ListTransactions).Methods("GET")
	authRouter.HandleFunc("/import", h.ImportTransactions).Methods("POST")
	authRouter.HandleFunc("/{id}", h.DeleteTransaction).Methods("DELETE")
	// CBR exchange rate endpoint
	r.HandleFunc("/exchange-rate", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			code = "USD"
		}
		rate, err := cbrClient.GetExchangeRate(code)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get exchange rate: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"rate": rate})
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
