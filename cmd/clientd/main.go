package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	filecredstore "github.com/rideshare-app/rideshare-client/internal/adapters/file/credstore"
	"github.com/rideshare-app/rideshare-client/internal/adapters/httpgateway"
	"github.com/rideshare-app/rideshare-client/internal/adapters/localapi"
	"github.com/rideshare-app/rideshare-client/internal/adapters/lognotifier"
	"github.com/rideshare-app/rideshare-client/internal/adapters/push"
	"github.com/rideshare-app/rideshare-client/internal/app/lifecycle"
	"github.com/rideshare-app/rideshare-client/internal/app/route"
	"github.com/rideshare-app/rideshare-client/internal/app/session"
	"github.com/rideshare-app/rideshare-client/internal/app/suggest"
	platformclock "github.com/rideshare-app/rideshare-client/internal/platform/clock"
	"github.com/rideshare-app/rideshare-client/internal/platform/config"
	"github.com/rideshare-app/rideshare-client/internal/platform/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := platformclock.NewSystemClock()
	creds := filecredstore.NewStore(cfg.TokenPath)
	gw := httpgateway.NewClient(cfg.APIBaseURL, creds, log)
	routes := route.NewResolver(gw, log)
	notif := lognotifier.New(log)

	bridge := push.NewBridge(gw, cfg.NotifyURL, cfg.PushCapable, log)

	control := lifecycle.NewController(lifecycle.Deps{
		Gateway:  gw,
		Creds:    creds,
		Routes:   routes,
		Clock:    clk,
		Notifier: notif,
		Refresh:  bridge.Refresh(),
		Log:      log,
	})
	control.BootstrapDelay = cfg.BootstrapDelay
	control.PollInterval = cfg.PollInterval

	origin := suggest.NewFetcher(gw, clk, log)
	origin.Quiet = cfg.DebounceQuiet
	destination := suggest.NewFetcher(gw, clk, log)
	destination.Quiet = cfg.DebounceQuiet

	go control.Run(ctx)
	go origin.Run(ctx)
	go destination.Run(ctx)
	go bridge.Run(ctx)

	// Re-registered on every bootstrap; failure degrades to polling-only.
	if err := bridge.Register(ctx); err != nil {
		log.Info("continuing without push-driven refresh")
	}

	sessions := session.NewService(gw, creds, log)
	api := localapi.NewServer(sessions, control, origin, destination, log)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.LocalAPIPort),
		Handler:           localapi.NewRouter(api),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("local control api listening", logger.Int("port", cfg.LocalAPIPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
