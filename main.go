package main

import (
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"sfe/internal/api"
	"sfe/internal/cache"
	"sfe/internal/config"
	"sfe/internal/extractor"
	"sfe/internal/failuremem"
	"sfe/internal/httpx"
	"sfe/internal/logging"
	"sfe/internal/orchestrator"
	"sfe/internal/serp"
	"sfe/internal/worker"
)

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		return gzip.NewWriter(nil)
	},
}

const pdfWorkerPoolSize = 4

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logging.SetDebug(cfg.Debug)

	httpClient := httpx.NewClient()

	pdfPool := worker.NewPool(pdfWorkerPoolSize, 64)
	pdfPool.Start()
	defer pdfPool.Stop()

	serpClient := serp.NewRetryingClient(serp.NewClient(httpClient, cfg.SerpAPIKey, cfg.SerpZone, cfg.SerpBaseURL, int(cfg.SerpPollBudget.Seconds())))
	dispatcher := extractor.NewDispatcher(httpClient, pdfPool, cfg.HostedCrawlerURL, cfg.HostedCrawlerAPIKey)
	memory := failuremem.New(cfg.ConfidenceThreshold, cfg.FailureRetentionDays, cfg.EnableFailureLearning)

	var resultCache cache.Cache
	switch cfg.CacheBackend {
	case "redis":
		resultCache = cache.NewRedisCache(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	case "sharded":
		resultCache = cache.NewShardedMemoryCache(10*time.Minute, 15*time.Minute)
	default:
		resultCache = cache.NewMemoryCache(10*time.Minute, 15*time.Minute)
	}
	defer resultCache.Close()

	orch := orchestrator.New(orchestrator.Config{
		MaxConcurrentQueries:  cfg.MaxConcurrentQueries,
		MaxConcurrentFetch:    cfg.MaxConcurrentFetch,
		AutoFetchLimit:        cfg.AutoFetchLimit,
		QueryTimeoutLight:     60 * time.Second,
		QueryTimeoutFull:      120 * time.Second,
		FetchBatchTimeout:     cfg.ParallelFetchTimeout,
		SingleURLTimeout:      cfg.SingleURLTimeout,
		MaxContentBytes:       cfg.MaxContentBytes,
		MaxContentTokens:      cfg.MaxContentTokens,
		EnableFailureLearning: cfg.EnableFailureLearning,
		RelevanceGate:         cfg.RelevanceGate,
	}, serpClient, dispatcher, memory, func() string { return uuid.NewString() })
	orch.WithResultCache(resultCache, 30*time.Minute)

	handler := api.NewHandler(orch)

	mux := http.NewServeMux()
	mux.HandleFunc("/search", handler.HandleSearch)
	mux.HandleFunc("/health", api.HandleHealth)

	wrapped := gzipMiddleware(timeoutMiddleware(mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logging.Attempt("main", "server_starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("server failed to start: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("server forced to shutdown: %v", err)
		os.Exit(1)
	}
}

// gzipMiddleware compresses responses when the client supports it.
func gzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Vary", "Accept-Encoding")

		gw := gzipWriterPool.Get().(*gzip.Writer)
		gw.Reset(w)
		defer func() {
			gw.Close()
			gzipWriterPool.Put(gw)
		}()

		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, writer: gw}, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	writer *gzip.Writer
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.writer.Write(b)
}

// timeoutMiddleware bounds total request handling time independent of the
// orchestrator's own internal nested timeouts, as a last-resort backstop.
func timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Minute)
		defer cancel()
		r = r.WithContext(ctx)

		done := make(chan struct{})
		go func() {
			next.ServeHTTP(w, r)
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			logging.Error("request timed out: %s %s", r.Method, r.URL.Path)
			http.Error(w, "request timeout", http.StatusGatewayTimeout)
		}
	})
}
