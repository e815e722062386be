package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"radsolve/objective"
	"radsolve/pmap"
	"radsolve/solver"
)

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Run a fresh solve from a parameter file to convergence or the iteration cap",
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, err := pmap.InitFromFile(paramPath)
			if err != nil {
				return fmt.Errorf("loading parameter file %q: %w", paramPath, err)
			}

			fs := afero.NewOsFs()
			opts := solver.Options{
				Workers:   cfg.Workers,
				SaveCycle: cfg.SaveCycle,
				LogCycle:  cfg.LogCycle,
				Fs:        fs,
				BaseDir:   cfg.ModelPath(modelName),
				Log:       log,
			}

			_, sol, err := solver.Solve(cmd.Context(), pm, objective.ExponentialParts(), opts)
			if err != nil {
				return fmt.Errorf("solving: %w", err)
			}

			log.WithFields(map[string]interface{}{
				"iterations": sol.It,
				"acc":        sol.Acc,
			}).Info("solve finished")
			return nil
		},
	}
	cmd.Flags().StringVar(&paramPath, "param", "", "path to the parameter file (required)")
	_ = cmd.MarkFlagRequired("param")
	return cmd
}
