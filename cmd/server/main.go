package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/devaloi/safecast/internal/client"
	"github.com/devaloi/safecast/internal/config"
	"github.com/devaloi/safecast/internal/handler"
	"github.com/devaloi/safecast/internal/hub"
	"github.com/devaloi/safecast/internal/metrics"
	"github.com/devaloi/safecast/internal/store"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.Fatalf("logging: %v", err)
	}

	s, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer s.Close()

	h := hub.New(hub.Options{
		MaxRooms:       cfg.MaxRooms,
		PeerLeftEvents: cfg.PeerLeftEvents,
	})
	go h.Run()
	defer h.Stop()

	router := handler.NewRouter(handler.Deps{
		Hub:   h,
		Store: s,
		ClientOptions: client.Options{
			SendBuffer:        cfg.SendBuffer,
			MaxMessageBytes:   int64(cfg.MaxMessageBytes),
			MessagesPerSecond: cfg.MessagesPerSecond,
		},
		ICEServers:    cfg.ICEServers(),
		PublicBaseURL: cfg.PublicBaseURL,
	})

	apiServer := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: promhttp.InstrumentHandlerInFlight(metrics.InFlightGauge,
			promhttp.InstrumentHandlerCounter(metrics.RequestsCounter, router)),
	}

	var metricsServer *http.Server
	if cfg.MetricsPort != "" && cfg.MetricsPort != "0" {
		metricsRouter := mux.NewRouter()
		metricsRouter.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: ":" + cfg.MetricsPort, Handler: metricsRouter}
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	log.WithFields(log.Fields{
		"addr":      apiServer.Addr,
		"max_rooms": cfg.MaxRooms,
		"ice":       len(cfg.STUNURLs) + len(cfg.TURNURLs),
	}).Info("safecast signaling server listening")
	go func() {
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("api server: %v", err)
		}
	}()

	if metricsServer != nil {
		log.Info("metrics server listening on " + metricsServer.Addr)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("metrics server: %v", err)
			}
		}()
	}

	sig := <-done
	log.WithField("signal", sig.String()).Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("api server shutdown")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.WithError(err).Error("metrics server shutdown")
		}
	}
	log.WithField("connections", h.ConnectionCount()).Info("stopped")
}
