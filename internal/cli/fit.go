// SPDX-License-Identifier: MIT

package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/sparselm/estimator"
	"github.com/katalvlaran/sparselm/internal/dataset"
)

// ErrNoData indicates a command run without --data or data.path.
var ErrNoData = errors.New("cli: no training data (set --data or data.path)")

func (rt *runtime) load() (*dataset.Dataset, error) {
	if rt.cfg.Data.Path == "" {
		return nil, ErrNoData
	}
	ds, err := dataset.Load(rt.cfg.Data.Path, rt.cfg.Data.Target)
	if err != nil {
		return nil, err
	}
	n, p := ds.X.Dims()
	rt.logger.Info("dataset loaded",
		zap.String("path", rt.cfg.Data.Path),
		zap.Int("rows", n),
		zap.Int("features", p),
		zap.String("target", ds.Target))

	return ds, nil
}

func newFitCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "fit",
		Short: "Fit the configured model and print its coefficients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := rt.load()
			if err != nil {
				return err
			}
			r, err := rt.cfg.Model.Regressor(estimator.WithEngine(rt.engine()))
			if err != nil {
				return err
			}
			if err = r.Fit(cmd.Context(), ds.X, ds.Y); err != nil {
				return err
			}
			if err = printFit(cmd.OutOrStdout(), rt.output, ds, r); err != nil {
				return err
			}

			return rt.flush()
		},
	}
}

func printFit(w io.Writer, format string, ds *dataset.Dataset, r *estimator.Regressor) error {
	if format == OutputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}

		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "family\t%s\n", r.Family())
	fmt.Fprintf(tw, "certified\t%t\n", r.Certified())
	fmt.Fprintf(tw, "intercept\t%.6g\n", r.Intercept())
	for j, c := range r.Coef() {
		fmt.Fprintf(tw, "%s\t%.6g\n", ds.Features[j], c)
	}
	for _, warn := range r.Warnings() {
		fmt.Fprintf(tw, "warning\t%s\n", warn)
	}

	return tw.Flush()
}
