package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mchmarny/topbar/pkg/config"
	"github.com/mchmarny/topbar/pkg/logger"
	"github.com/mchmarny/topbar/pkg/topbar"
)

var (
	port      = flag.Int("port", 0, "Port to run the server on (overrides TOPBAR_PORT)")
	logoutURL = flag.String("logout-url", "", "Base URL of the service exposing /api/logout (overrides TOPBAR_LOGOUT_URL)")
	walletURL = flag.String("wallet-rpc-url", "", "Wallet JSON-RPC endpoint (overrides TOPBAR_WALLET_RPC_URL)")
)

func main() {
	flag.Parse()

	logger.Init(topbar.Version())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	if *port != 0 {
		cfg.Port = *port
	}
	if *logoutURL != "" {
		cfg.LogoutURL = *logoutURL
	}
	if *walletURL != "" {
		cfg.WalletRPCURL = *walletURL
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := topbar.Run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
