// Package main provides the CLI entry point for the Aria agent runtime.
//
// Aria embeds a room-serialized, multi-action agent core into a host
// process: it composes context from registered providers, plans and
// executes actions against registered handlers, and logs a trajectory of
// every turn. It implements no connectors or model providers itself —
// those are supplied as plugins by the embedding process.
//
// # Basic Usage
//
// Check that a config file loads and the runtime assembles cleanly:
//
//	aria initialize --config aria.yaml
//
// Run one message through the runtime and print the response:
//
//	aria run-once --config aria.yaml --text "hello"
//
// Inspect or set an encrypted setting:
//
//	aria settings get my-key
//	aria settings set my-key my-value
//
// # Environment Variables
//
//   - SECRET_SALT: key material for settings encryption.
//   - NODE_ENV: when "production", a default/missing SECRET_SALT is
//     rejected unless ELIZA_ALLOW_DEFAULT_SECRET_SALT is set to any
//     non-empty value.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ariaos/aria/internal/runtime"
	"github.com/ariaos/aria/internal/telemetry"
	"github.com/ariaos/aria/internal/trajectory"
	"github.com/ariaos/aria/pkg/types"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath  string
	metricsAddr string
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "aria",
		Short:        "Aria - embeddable agent runtime",
		Long:         "Aria composes state, plans and executes actions, and logs trajectories for one embedded agent process.",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "aria.yaml", "path to the runtime config file")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus /metrics on this address (e.g. :9090)")

	rootCmd.AddCommand(
		buildInitializeCmd(),
		buildRunOnceCmd(),
		buildSettingsCmd(),
	)
	return rootCmd
}

// newRuntime assembles a runtime.Runtime from the loaded config, wiring
// metrics when --metrics-addr is set and tracing when the config names
// an otlp_endpoint.
func newRuntime() (*runtime.Runtime, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	rtCfg := runtime.Config{
		AgentID:               cfg.AgentID,
		SettingsSalt:          cfg.SettingsSalt,
		ActionPlanningEnabled: cfg.ActionPlanningEnabled,
		ProviderConcurrency:   cfg.ProviderConcurrency,
		Log:                   corelogAdapter(),
	}
	if cfg.TrajectoryLogPath != "" {
		rtCfg.TrajectorySink = trajectory.NewFileSink(cfg.TrajectoryLogPath)
	}
	if metricsAddr != "" {
		rtCfg.Metrics = telemetry.NewMetrics()
		go serveMetrics(metricsAddr)
	}
	if cfg.OTLPEndpoint != "" {
		if _, err := initTracing(context.Background(), cfg.OTLPEndpoint); err != nil {
			return nil, err
		}
		rtCfg.Tracer = telemetry.NewTracer("github.com/ariaos/aria/internal/runtime")
	}

	return runtime.New(rtCfg)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}

func buildInitializeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "initialize",
		Short: "Load the config and verify the runtime assembles cleanly",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "runtime initialized for agent %q\n", rt.AgentID())
			return nil
		},
	}
}

func buildRunOnceCmd() *cobra.Command {
	var text, entityID, roomID string
	cmd := &cobra.Command{
		Use:   "run-once",
		Short: "Run a single message through the runtime and print the response",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			mem, err := types.NewMessageMemory(entityID, roomID, types.Content{Text: text})
			if err != nil {
				return fmt.Errorf("build message: %w", err)
			}
			result, err := rt.HandleMessage(context.Background(), mem, nil)
			if err != nil {
				return fmt.Errorf("handle message: %w", err)
			}
			if result.Response != nil {
				fmt.Fprintln(cmd.OutOrStdout(), result.Response.Content.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "inbound message text")
	cmd.Flags().StringVar(&entityID, "entity-id", "cli-user", "inbound message entity id")
	cmd.Flags().StringVar(&roomID, "room-id", "cli-room", "inbound message room id")
	return cmd
}

func buildSettingsCmd() *cobra.Command {
	settingsCmd := &cobra.Command{Use: "settings", Short: "Read or write runtime settings"}
	settingsCmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print a setting's decrypted value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := newRuntime()
				if err != nil {
					return err
				}
				value, ok := rt.GetSetting(args[0])
				if !ok {
					return fmt.Errorf("setting %q not found", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Encrypt and store a setting value",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := newRuntime()
				if err != nil {
					return err
				}
				return rt.SetSetting(args[0], args[1])
			},
		},
	)
	return settingsCmd
}
