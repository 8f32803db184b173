package cli

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/gearbox/pkg/cache"
	"github.com/platinummonkey/gearbox/pkg/compiler"
	"github.com/platinummonkey/gearbox/pkg/generate"
	"github.com/platinummonkey/gearbox/pkg/observability"
	"github.com/platinummonkey/gearbox/pkg/watch"
)

func newWatchCommand() *Command {
	cmd := &Command{
		Name:        "watch",
		Description: "Watch the source directory and regenerate on schema changes",
	}

	cmd.Run = func(args []string) error {
		flags := flag.NewFlagSet("watch", flag.ExitOnError)
		configPath := flags.String("config", "", "Path to a gearbox.yaml configuration file")
		sourceDir := flags.String("source", "", "Schema source directory (overrides config)")
		delay := flags.Duration("delay", 2*time.Second, "Quiet period after the last change before regenerating")
		listenAddr := flags.String("listen", "", "Serve /status and /metrics on this address (e.g. :9480)")
		if err := flags.Parse(args); err != nil {
			return err
		}

		cfg, err := loadConfig(*configPath, *sourceDir, "")
		if err != nil {
			return err
		}

		store, err := cache.NewStore(cfg.CacheDir)
		if err != nil {
			return err
		}

		log := logrus.New()
		registry := prometheus.NewRegistry()
		metrics := observability.NewMetrics(registry)

		task := generate.NewTask(cfg, store, compiler.NewExecInvoker(),
			generate.WithMetrics(metrics), generate.WithLogger(log))
		watcher := watch.NewWatcher(task, cfg.SourceDir, *delay, log)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			err := watcher.Start(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})

		if *listenAddr != "" {
			router := observability.NewRouter(registry, func() observability.Status {
				result, runAt, runErr := watcher.LastRun()
				status := observability.Status{
					Watching:  true,
					SourceDir: cfg.SourceDir,
					LastRunAt: runAt,
				}
				if runErr != nil {
					status.LastError = runErr.Error()
				}
				if result != nil {
					status.LastRunID = result.RunID
					status.LastCacheHit = result.CacheHit
					status.GeneratedFiles = len(result.GeneratedFiles)
				}
				return status
			})

			server := &http.Server{Addr: *listenAddr, Handler: router}
			g.Go(func() error {
				if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})
			log.WithField("addr", *listenAddr).Info("status endpoint listening")
		}

		return g.Wait()
	}

	return cmd
}
