package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/MonyVannn/Grocy/internal/auth"
	"github.com/MonyVannn/Grocy/internal/config"
	"github.com/MonyVannn/Grocy/internal/handlers"
	"github.com/MonyVannn/Grocy/internal/middleware"
	"github.com/MonyVannn/Grocy/internal/service"
	"github.com/MonyVannn/Grocy/internal/storage/sqlite"
	"github.com/MonyVannn/Grocy/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath, cfg.TaxRate)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath, "tax_rate", cfg.TaxRate)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	server := handlers.NewServer(
		service.NewAuthService(authenticator, jwtManager),
		service.NewTripService(store),
		service.NewItemService(store, cfg.TaxRate),
		service.NewExpenseService(store, cfg.TaxRate),
		service.NewSettlementService(store),
		service.NewMemberService(store),
		service.NewReportService(store, cfg.TaxRate),
		jwtManager,
	)

	handler := middleware.Logging(middleware.CORS(server.Routes()))

	// h2c allows HTTP/2 without TLS for clients behind a terminating proxy.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := ":" + cfg.Port
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
