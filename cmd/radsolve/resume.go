package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"radsolve/checkpoint"
	"radsolve/objective"
	"radsolve/solver"
)

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Continue a previously checkpointed solve from its last saved iteration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := afero.NewOsFs()
			baseDir := cfg.ModelPath(modelName)

			dir, err := checkpoint.FindLastSaved(fs, baseDir)
			if err != nil {
				dir = baseDir
			}

			store := checkpoint.New(fs, dir)
			parts := objective.ExponentialParts()
			m, err := store.LoadModel(parts)
			if err != nil {
				return fmt.Errorf("loading model from %q: %w", dir, err)
			}
			sol, err := store.LoadSolution()
			if err != nil {
				return fmt.Errorf("loading solution from %q: %w", dir, err)
			}

			opts := solver.Options{
				Workers:   cfg.Workers,
				SaveCycle: cfg.SaveCycle,
				LogCycle:  cfg.LogCycle,
				Fs:        fs,
				BaseDir:   baseDir,
				Log:       log,
			}

			if err := solver.Resume(cmd.Context(), m, sol, opts); err != nil {
				return fmt.Errorf("resuming: %w", err)
			}

			log.WithFields(map[string]interface{}{
				"iterations": sol.It,
				"acc":        sol.Acc,
			}).Info("resume finished")
			return nil
		},
	}
}
