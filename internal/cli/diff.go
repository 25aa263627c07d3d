package cli

import (
	"context"

	"github.com/spf13/cobra"

	"config-packager/internal/app"
)

type diffOptions struct {
	Lines      int
	Types      []string
	SideBySide bool
}

func newDiffCommand() *cobra.Command {
	opts := diffOptions{}
	cmd := &cobra.Command{
		Use:   "diff [package]",
		Short: "Show differences between active and exported configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd, args, opts)
		},
	}
	cmd.Flags().IntVar(&opts.Lines, "lines", -1, "Lines of context around changes (-1 shows the whole item)")
	cmd.Flags().StringSliceVar(&opts.Types, "ctypes", nil, "Only compare these configuration types")
	cmd.Flags().BoolVar(&opts.SideBySide, "side-by-side", false, "Show packaged and active values in two columns")
	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, args []string, opts diffOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	req := app.DiffRequest{
		Bundle:     bundleName(cmd),
		Types:      opts.Types,
		Context:    service.Settings.Diff.Context,
		SideBySide: opts.SideBySide,
	}
	if flagChanged(cmd, "lines") {
		req.Context = opts.Lines
	}
	if len(args) == 1 {
		req.Package = args[0]
	}
	result, err := service.Diff(ctx, req)
	if err != nil {
		return err
	}
	renderDiff(cmd.OutOrStdout(), result, opts.SideBySide)
	return nil
}
