package topbar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mchmarny/topbar/pkg/action"
	"github.com/mchmarny/topbar/pkg/client"
	"github.com/mchmarny/topbar/pkg/config"
	"github.com/mchmarny/topbar/pkg/logger"
	"github.com/mchmarny/topbar/pkg/metric"
	"github.com/mchmarny/topbar/pkg/server"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	version = "dev"     // Set at build time via -ldflags "-X github.com/mchmarny/topbar/pkg/topbar.version=version"
	commit  = "none"    // Set at build time via -ldflags "-X github.com/mchmarny/topbar/pkg/topbar.commit=commit"
	date    = "unknown" // Set at build time via -ldflags "-X github.com/mchmarny/topbar/pkg/topbar.date=date"
)

// Version returns the build version.
func Version() string {
	return version
}

// FromConfig wires a Topbar from cfg, registering its counters with reg.
func FromConfig(cfg *config.Config, reg prometheus.Registerer) *Topbar {
	var wallet action.WalletProvider
	if cfg.WalletRPCURL != "" {
		wallet = client.NewRPCWallet(cfg.WalletRPCURL, nil)
	}

	return New(
		fmt.Sprintf("Top Bar (%s)", version),
		version,
		NewStore(cfg.MaxMounts),
		client.NewLogoutClient(cfg.LogoutURL, nil),
		wallet,
		metric.NewSet(reg),
	)
}

// Run starts the top bar server and blocks until the context is canceled or an error occurs.
func Run(ctx context.Context, cfg *config.Config, opt ...server.Option) error {
	logger.InitLevel(version, cfg.LogLevel)
	slog.Info("starting topbar",
		"commit", commit,
		"date", date,
		"wallet", cfg.WalletRPCURL != "",
		"logout_url", cfg.LogoutURL)

	reg := prometheus.NewRegistry()
	t := FromConfig(cfg, reg)

	opts := []server.Option{
		server.WithPort(cfg.Port),
		// wallet approval waits on the user
		server.WithWriteTimeout(0),
		server.WithSimpleHealth(),
		server.WithHandler("GET /metrics", metric.GetHandlerForRegistry(reg)),
	}

	t.RegisterHandlers(func(pattern string, h http.Handler) {
		opts = append(opts, server.WithHandler(pattern, h))
	})

	opts = append(opts, opt...)

	return server.New(opts...).Serve(ctx)
}
