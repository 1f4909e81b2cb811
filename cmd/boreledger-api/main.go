package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boreledger/boreledger/pkg/config"
	"github.com/boreledger/boreledger/pkg/dispatcher"
	"github.com/boreledger/boreledger/pkg/entityrepo"
	"github.com/boreledger/boreledger/pkg/health"
	"github.com/boreledger/boreledger/pkg/ingest"
	"github.com/boreledger/boreledger/pkg/log"
	"github.com/boreledger/boreledger/pkg/metrics"
	"github.com/boreledger/boreledger/pkg/objectstore"
	"github.com/boreledger/boreledger/pkg/repository"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "boreledger-api",
	Short:   "boreledger-api serves the request dispatcher over HTTP",
	Version: Version,
	RunE:    runServe,
}

func init() {
	config.BindFlags(rootCmd)
	cobra.OnInitialize(initLogging)
	rootCmd.Flags().String("listen-addr", ":8080", "HTTP listen address")
}

func initLogging() {
	cfg := config.FromCommand(rootCmd)
	log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.FromCommand(cmd)
	listenAddr, _ := cmd.Flags().GetString("listen-addr")

	store, err := objectstore.New(context.Background(), cfg.ObjectStoreConfig())
	if err != nil {
		return fmt.Errorf("boreledger-api: building object store: %w", err)
	}
	entities := entityrepo.New(repository.New(store))
	d := dispatcher.New(entities, ingest.New(entities))

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	monitor := health.NewMonitor(health.NewObjectStoreChecker(store), health.DefaultConfig())
	go monitor.Start(monitorCtx)

	mux := http.NewServeMux()
	mux.HandleFunc("/dispatch", dispatchHandler(d))
	mux.HandleFunc("/healthz", healthzHandler(monitor))
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           loggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger := log.WithComponent("api")
	go func() {
		logger.Info().Str("addr", listenAddr).Msg("boreledger-api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	stopMonitor()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	logger := log.WithComponent("api")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).Msg("request handled")
	})
}

func dispatchHandler(d *dispatcher.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var req dispatcher.Request
		if err := json.Unmarshal(body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid JSON request body"}`))
			return
		}

		resp := d.Dispatch(r.Context(), req)
		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = w.Write([]byte(resp.Body))
	}
}

func healthzHandler(monitor *health.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := monitor.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		if !snapshot.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(snapshot)
	}
}
