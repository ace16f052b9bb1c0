package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/strandkit/strand"
	"github.com/strandkit/strand/internal/logging"
	loamAdapter "github.com/strandkit/strand/pkg/adapters/loam"
	redisAdapter "github.com/strandkit/strand/pkg/adapters/redis"
	"github.com/strandkit/strand/pkg/components"
	"github.com/strandkit/strand/pkg/observability"
)

var rootCmd = &cobra.Command{
	Use:   "strand",
	Short: "Strand is a chain composition and execution engine",
	Long:  `Strand lets you wire models and actions into executable chains described in simple YAML files.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("store", "memory", "Chain store backend: 'memory', 'redis' or 'loam'")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address (store=redis)")
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing stored chain definitions (store=loam)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// newEngine builds an engine from the persistent flags, with the stock
// component library installed.
func newEngine(cmd *cobra.Command, metrics *observability.Metrics) (*strand.Engine, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	opts := []strand.Option{strand.WithLogger(logger)}
	if metrics != nil {
		opts = append(opts, strand.WithMetrics(metrics))
	}

	storeKind, _ := cmd.Flags().GetString("store")
	switch storeKind {
	case "memory":
		// Engine default.
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		opts = append(opts, strand.WithStore(redisAdapter.New(addr, os.Getenv("STRAND_REDIS_PASSWORD"), 0)))
	case "loam":
		dir, _ := cmd.Flags().GetString("dir")
		store, err := loamAdapter.Open(dir)
		if err != nil {
			return nil, fmt.Errorf("open chain repository: %w", err)
		}
		opts = append(opts, strand.WithStore(store))
	default:
		return nil, fmt.Errorf("unknown store backend %q", storeKind)
	}

	eng := strand.New(opts...)
	if err := components.Install(eng.Registries()); err != nil {
		return nil, fmt.Errorf("install stock components: %w", err)
	}
	return eng, nil
}
