package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nohros/nohrosruby/admin"
	"github.com/nohros/nohrosruby/config"
	"github.com/nohros/nohrosruby/node"
	"github.com/nohros/nohrosruby/observability"
	"github.com/nohros/nohrosruby/registry"
)

const shutdownTimeout = 10 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the node",
	Long: `Start the ruby node.

The node will:
- Open (or create) the services database and seed it from the manifest
- Bind the message channel and register the node and control loops
- Serve the admin HTTP API and gRPC health service when configured

Press Ctrl+C to shut down.`,
	RunE: runNode,
}

func init() {
	f := runCmd.Flags()
	f.Int("message-channel-port", config.DefaultMessageChannelPort, "port of the message channel")
	f.String("service-tracker-address", "", "endpoint the node loops register with (default: the local message channel)")
	f.Bool("wait-debugger", false, "wait for a key press before starting")
	f.Duration("route-ttl", 0, "drop routes not seen for this long (0 disables sweeping)")
	f.String("manifest", "", "YAML manifest of services to register at startup")
	f.String("admin-addr", "", "admin HTTP listen address (empty disables)")
	f.String("grpc-addr", "", "gRPC health listen address (empty disables)")
	rootCmd.AddCommand(runCmd)
}

func runNode(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, restore, err := observability.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		restore()
		_ = logger.Sync()
	}()

	if cfg.Node.WaitDebugger {
		fmt.Fprintln(cmd.OutOrStdout(), "Attach the debugger and press enter to continue.")
		_, _ = bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	}

	db, err := openRegistry(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("failed to open the services database", zap.Error(err))
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := node.NewService(cfg.Node, db,
		node.WithLogger(logger),
		node.WithMetrics(node.NewMetrics("ruby", reg)),
		node.WithControlHandler(node.NewLoggingControlHandler(logger)),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start node: %w", err)
	}
	defer svc.Stop()

	var adminServer *admin.Server
	if cfg.Admin.HTTPAddr != "" {
		adminServer = admin.NewServer(svc, reg, logger)
		if err := adminServer.StartAsync(cfg.Admin.HTTPAddr); err != nil {
			return err
		}
	}

	var health *admin.HealthServer
	if cfg.Admin.GRPCAddr != "" {
		health = admin.NewHealthServer(logger)
		if err := health.StartAsync(cfg.Admin.GRPCAddr); err != nil {
			if adminServer != nil {
				_ = adminServer.Stop(context.Background())
			}
			return err
		}
		health.SetServing(true)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if health != nil {
		health.SetServing(false)
		health.Stop()
	}
	if adminServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := adminServer.Stop(shutdownCtx); err != nil {
			logger.Warn("admin server shutdown", zap.Error(err))
		}
	}
	return nil
}

// openRegistry opens the services database under the data dir and applies
// the manifest, if one is configured.
func openRegistry(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*registry.Database, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := registry.Open(cfg.RegistryPath(), logger)
	if err != nil {
		return nil, err
	}

	if cfg.Registry.Manifest == "" {
		return db, nil
	}
	m, err := registry.LoadManifest(cfg.Registry.Manifest)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	added, err := db.Seed(ctx, m)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to seed registry: %w", err)
	}
	logger.Info("manifest applied", zap.String("manifest", cfg.Registry.Manifest), zap.Int("added", added))
	return db, nil
}
