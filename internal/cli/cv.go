// SPDX-License-Identifier: MIT

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/sparselm/estimator"
	"github.com/katalvlaran/sparselm/selection"
)

// ErrNoGrid indicates a cv run without cv.grid.
var ErrNoGrid = errors.New("cli: cv.grid is empty")

func newCVCommand(rt *runtime) *cobra.Command {
	var njobs int

	cmd := &cobra.Command{
		Use:   "cv",
		Short: "Grid-search the configured model by k-fold cross-validation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(rt.cfg.CV.Grid) == 0 {
				return ErrNoGrid
			}
			if cmd.Flags().Changed("njobs") {
				rt.cfg.CV.NJobs = njobs
			}
			ds, err := rt.load()
			if err != nil {
				return err
			}
			r, err := rt.cfg.Model.Regressor(estimator.WithEngine(rt.engine()))
			if err != nil {
				return err
			}
			gs, err := rt.cfg.CV.Search(r)
			if err != nil {
				return err
			}
			res, err := gs.Fit(cmd.Context(), ds.X, ds.Y,
				selection.WithNJobs(rt.cfg.CV.NJobs),
				selection.WithLogger(rt.logger.Named("selection")))
			if err != nil {
				return err
			}
			if err = printSearch(cmd.OutOrStdout(), rt.output, res); err != nil {
				return err
			}

			return rt.flush()
		},
	}
	cmd.Flags().IntVar(&njobs, "njobs", 0, "concurrent fits (default: GOMAXPROCS)")

	return cmd
}

type candidateOut struct {
	Params estimator.Params `yaml:"params"`
	Mean   float64          `yaml:"mean"`
	Std    float64          `yaml:"std"`
	Best   bool             `yaml:"best,omitempty"`
}

type searchOut struct {
	Candidates []candidateOut `yaml:"candidates"`
	Coef       []float64      `yaml:"coef"`
	Intercept  float64        `yaml:"intercept"`
}

func printSearch(w io.Writer, format string, res *selection.Result) error {
	if format == OutputYAML {
		out := searchOut{Coef: res.Best.Coef(), Intercept: res.Best.Intercept()}
		for i, c := range res.Candidates {
			out.Candidates = append(out.Candidates, candidateOut{Params: c.Params, Mean: c.Mean, Std: c.Std, Best: i == res.BestIndex})
		}
		b, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		_, err = w.Write(b)

		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "params\tmean\tstd\t")
	for i, c := range res.Candidates {
		mark := ""
		if i == res.BestIndex {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%.6g\t%.6g\t%s\n", formatParams(c.Params), c.Mean, c.Std, mark)
	}

	return tw.Flush()
}

func formatParams(ps estimator.Params) string {
	parts := make([]string, 0, len(ps))
	for _, k := range ps.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, ps[k]))
	}

	return strings.Join(parts, " ")
}
