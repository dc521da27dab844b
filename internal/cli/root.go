package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rflorenc/lxd-resource-dashboard/internal/config"
	"github.com/rflorenc/lxd-resource-dashboard/internal/inventory"
	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

// Build metadata, set via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// openSource is swapped out in tests.
var openSource = func(conn *models.Connection, timeout time.Duration, logger *zap.Logger) (inventory.Source, error) {
	return inventory.NewSource(conn, timeout, logger)
}

// NewRootCmd returns the root cobra command.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lxd-dashboard",
		Short:         "Browse discovered LXD containers, VMs, storage pools and networks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().String("config", "", "Path to config file (YAML)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().String("source-type", "", "Inventory source: inventory|incus")
	cmd.PersistentFlags().String("host", "", "Inventory API host")

	cmd.AddCommand(newVersionCmd(stdout))
	cmd.AddCommand(newServeCmd(stdout, stderr))
	cmd.AddCommand(newShowCmd(stdout, stderr))

	return cmd
}

// Execute runs the CLI with the process stdio.
func Execute() int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "lxd-dashboard %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// loadConfig reads the config file then applies flags that were set
// explicitly, so flags win over the file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("source-type") {
		cfg.Source.Type, _ = flags.GetString("source-type")
	}
	if flags.Changed("host") {
		cfg.Source.Host, _ = flags.GetString("host")
	}
	if flags.Lookup("listen") != nil && flags.Changed("listen") {
		cfg.Listen, _ = flags.GetString("listen")
	}
	if flags.Lookup("dev") != nil {
		cfg.Dev, _ = flags.GetBool("dev")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
