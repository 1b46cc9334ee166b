package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/parley/internal/logging"
	httpadapter "github.com/aretw0/parley/pkg/adapters/http"
	"github.com/aretw0/parley/pkg/adapters/memory"
	redisadapter "github.com/aretw0/parley/pkg/adapters/redis"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/aretw0/parley/pkg/persistence/middleware"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workflow over HTTP for the voice-runtime glue",
	Long: `Starts the REST server: create and resume call sessions, post turns,
fetch prompts and directives. With --redis, snapshots and per-call locks move
to Redis so webhooks may land on any replica; otherwise calls live in memory.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(cmd); err != nil {
			fmt.Printf("Serve failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().String("redis", "", "Redis address for the session store and locks (e.g. localhost:6379)")
	serveCmd.Flags().String("redis-prefix", "parley:call:", "Redis key prefix")
	serveCmd.Flags().Duration("call-ttl", 2*time.Hour, "How long an idle call survives in Redis")
	serveCmd.Flags().String("encryption-key", "", "Hex-encoded 32-byte key; encrypts snapshots at rest")
	serveCmd.Flags().StringSlice("mask-data", nil, "Regexps for data keys to mask before persisting (e.g. ssn,dob)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	logLevel, _ := cmd.Flags().GetString("log-level")
	logger := logging.New(logging.ParseLevel(logLevel))

	workflow, err := loadWorkflow(cmd)
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer, workflow.Name)
	workflow = workflow.Observe(metrics.Hooks())

	var store ports.SessionStore
	var sessionOpts []session.Option
	sessionOpts = append(sessionOpts, session.WithLogger(logger))

	if redisAddr, _ := cmd.Flags().GetString("redis"); redisAddr != "" {
		prefix, _ := cmd.Flags().GetString("redis-prefix")
		ttl, _ := cmd.Flags().GetDuration("call-ttl")

		client := backend.NewClient(&backend.Options{Addr: redisAddr})
		if err := client.Ping(cmd.Context()).Err(); err != nil {
			return fmt.Errorf("redis unreachable at %s: %w", redisAddr, err)
		}
		store = redisadapter.NewFromClient(client,
			redisadapter.WithPrefix(prefix),
			redisadapter.WithTTL(ttl),
		)
		sessionOpts = append(sessionOpts, session.WithLocker(redisadapter.NewLocker(client, prefix)))
		logger.Info("using redis session store", "addr", redisAddr, "prefix", prefix)
	} else {
		store = memory.NewStore()
		logger.Info("using in-memory session store")
	}

	var mws []middleware.Middleware
	if patterns, _ := cmd.Flags().GetStringSlice("mask-data"); len(patterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(patterns))
		logger.Info("masking session data at rest", "patterns", patterns)
	}
	if keyHex, _ := cmd.Flags().GetString("encryption-key"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return fmt.Errorf("invalid encryption key: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
		logger.Info("encrypting snapshots at rest")
	}
	store = middleware.Chain(store, mws...)

	sessions := session.NewManager(store, sessionOpts...)

	mux := http.NewServeMux()
	mux.Handle("/", httpadapter.NewHandler(workflow, sessions, httpadapter.WithLogger(logger)))
	mux.Handle("/metrics", promhttp.Handler())

	addr, _ := cmd.Flags().GetString("addr")
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr, "workflow", workflow.Name)
		serverErrors <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-stop:
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}
