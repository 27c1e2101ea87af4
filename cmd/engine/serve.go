package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"leadhunt-engine/internal/httpapi"
	"leadhunt-engine/internal/logger"
	"leadhunt-engine/internal/scheduler"
	"leadhunt-engine/internal/store"
)

const (
	lockFile  = "engine.lock"
	tokenFile = "engine.token"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()
			return serve(cmd.Context(), a)
		},
	}
}

func serve(parent context.Context, a *app) error {
	lock := flock.New(filepath.Join(a.dataDir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("another engine is already serving %s", a.dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, err := shutdownToken(a.dataDir)
	if err != nil {
		return err
	}

	mux := httpapi.NewMux(httpapi.Deps{
		DB:            a.db.Pool,
		Hub:           a.hub,
		Logger:        a.log,
		Metrics:       a.metrics,
		Leads:         a.pipeline,
		NewDiscoverer: a.newDiscoverer,
		CfgVal:        a.cfgVal,
		UserCfgPath:   a.userCfgPath,
		LoadCfg:       a.reloadConfig,
	})
	mux.HandleFunc("/shutdown", httpapi.ShutdownHandler(token, stop))

	cfg := a.config()
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler:           httpapi.NewHandler(mux, a.log),
		ReadHeaderTimeout: 5 * time.Second,
		// SSE streams and running discoveries end with the process.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	a.log.Info("engine listening",
		logger.String("addr", "http://"+ln.Addr().String()),
		logger.String("data_dir", a.dataDir),
		logger.String("config", a.userCfgPath),
	)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if mins := cfg.Store.CheckpointMinutes; mins > 0 {
		g.Go(func() error {
			scheduler.Every(gctx, a.log, time.Duration(mins)*time.Minute, "wal-checkpoint", func(ctx context.Context) error {
				return store.Checkpoint(ctx, a.db.Pool)
			})
			return nil
		})
	}

	return g.Wait()
}

// shutdownToken returns LEADHUNT_SHUTDOWN_TOKEN or a fresh random token,
// written to the data dir so a local supervisor can read it.
func shutdownToken(dataDir string) (string, error) {
	token := os.Getenv("LEADHUNT_SHUTDOWN_TOKEN")
	if token == "" {
		var err error
		if token, err = randomToken(16); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(filepath.Join(dataDir, tokenFile), []byte(token+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write shutdown token: %w", err)
	}
	return token, nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
