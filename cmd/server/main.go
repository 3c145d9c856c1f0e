package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/AsgerSP/donation-platform/internal/config"
	"github.com/AsgerSP/donation-platform/internal/db"
	"github.com/AsgerSP/donation-platform/internal/gateway/quickpay"
	"github.com/AsgerSP/donation-platform/internal/gateway/scanpay"
	"github.com/AsgerSP/donation-platform/internal/handlers"
	"github.com/AsgerSP/donation-platform/internal/middleware"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	configPath := "configs/config.yaml"
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	config.InitLogger(cfg.AppEnv)
	slog.Info("Starting donation platform server", "app_env", cfg.AppEnv)

	if err := db.InitDB(cfg); err != nil {
		slog.Error("Fatal: failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.DB.Close()

	store := db.NewStore(db.DB)
	quickpayClient := quickpay.NewClient(cfg.Payment.Quickpay.BaseURL, cfg.Payment.Quickpay.APIKey)
	scanpayClient := scanpay.NewClient(cfg.Payment.Scanpay.BaseURL, cfg.Payment.Scanpay.APIKey)

	paymentHandlers := handlers.NewPaymentHandlers(cfg, store, quickpayClient, scanpayClient)

	mux := http.NewServeMux()
	mux.Handle("/api/payment", middleware.RateLimit(http.HandlerFunc(paymentHandlers.SubmitDonationHandler), 5, 10))
	mux.HandleFunc("/api/quickpay/change", paymentHandlers.QuickpayChangeHandler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Donation platform listening", "address", fmt.Sprintf("http://localhost%s", addr), "gateway", cfg.Payment.Gateway)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Fatal: HTTP server failed", "address", addr, "error", err)
		os.Exit(1)
	}
}
