// Package main implements radsolve, the CLI driver that wires the parameter
// map, model, solver and sweep packages together: solve, resume and sweep
// subcommands, each exiting non-zero on failure per spec.md §6/§7.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"radsolve/config"
)

var (
	configPath string
	paramPath  string
	modelName  string

	cfg *config.Driver
	log = logrus.New()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "radsolve",
		Short: "Parallel fixed-point solver for the wealth/attention-radius model",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if configPath != "" {
				cfg, err = config.FromYaml(configPath)
			} else {
				cfg = config.Default()
			}
			if err != nil {
				return fmt.Errorf("loading driver config: %w", err)
			}
			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("parsing log_level %q: %w", cfg.LogLevel, err)
			}
			log.SetLevel(level)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "driver config YAML file (defaults applied when omitted)")
	root.PersistentFlags().StringVar(&modelName, "model", "default", "model name, used as the checkpoint directory under the driver's tmp_dir")

	root.AddCommand(newSolveCmd())
	root.AddCommand(newResumeCmd())
	root.AddCommand(newSweepCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Error("radsolve failed")
		os.Exit(1)
	}
}
