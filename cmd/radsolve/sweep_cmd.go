package main

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"radsolve/objective"
	"radsolve/pmap"
	"radsolve/solver"
	"radsolve/sweep"
)

func solveOptsForSweep(fs afero.Fs) solver.Options {
	return solver.Options{
		Workers:   cfg.Workers,
		SaveCycle: cfg.SaveCycle,
		LogCycle:  cfg.LogCycle,
		Fs:        fs,
		BaseDir:   cfg.ModelPath(modelName),
		Log:       log,
	}
}

func newSweepCmd() *cobra.Command {
	var axesFlag string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Re-solve a model from scratch at each value of one or more parameter axes",
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, err := pmap.InitFromFile(paramPath)
			if err != nil {
				return fmt.Errorf("loading parameter file %q: %w", paramPath, err)
			}

			axisNames := strings.Split(axesFlag, ",")
			for i := range axisNames {
				axisNames[i] = strings.TrimSpace(axisNames[i])
			}

			axes, err := sweep.LoadAxes(pm, axisNames)
			if err != nil {
				return fmt.Errorf("loading sweep axes: %w", err)
			}

			fs := afero.NewOsFs()
			setters := sweep.DefaultSetters()
			results := sweep.Run(cmd.Context(), pm, objective.ExponentialParts(), setters, axes, solveOptsForSweep(fs))

			var failed int
			for r := range results {
				if r.Err != nil {
					failed++
					log.WithError(r.Err).WithField("param", r.Param).WithField("index", r.Index).Error("sweep point failed")
					continue
				}
				log.WithFields(map[string]interface{}{
					"param": r.Param,
					"index": r.Index,
					"value": r.Value,
					"it":    r.Solution.It,
				}).Info("sweep point finished")
			}
			if failed > 0 {
				return fmt.Errorf("sweep: %d point(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&paramPath, "param", "", "path to the parameter file (required)")
	cmd.Flags().StringVar(&axesFlag, "axes", "", "comma-separated parameter names to sweep, e.g. delta,gamma (required)")
	_ = cmd.MarkFlagRequired("param")
	_ = cmd.MarkFlagRequired("axes")
	return cmd
}
