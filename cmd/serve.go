package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-qualifier/internal/server"
)

var servePort int

// dedupEvictInterval is how often expired dedup entries are swept.
const dedupEvictInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server and dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initService()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(ctx, env.Pipeline, env.Log, cfg.Slack.ChannelAllow)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.ListenAndServe(ctx, port)
		})
		g.Go(func() error {
			runDedupJanitor(ctx, env)
			return nil
		})

		return g.Wait()
	},
}

// runDedupJanitor sweeps expired dedup entries until ctx is cancelled.
func runDedupJanitor(ctx context.Context, env *serviceEnv) {
	ticker := time.NewTicker(dedupEvictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := env.Dedup.Evict(time.Now()); n > 0 {
				zap.L().Debug("dedup entries evicted", zap.Int("count", n))
			}
		}
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
