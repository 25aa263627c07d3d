package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"config-packager/internal/app"
)

type exportOptions struct {
	AddProfile bool
	Method     string
}

func newExportCommand() *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export [packages...]",
		Short: "Export packages with a generation method",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd, args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.AddProfile, "add-profile", false, "Include the installation profile")
	cmd.Flags().StringVar(&opts.Method, "method", "", "Generation method (archive, write, git)")
	_ = viper.BindPFlag("generation_method", cmd.Flags().Lookup("method"))
	return cmd
}

func runExport(ctx context.Context, cmd *cobra.Command, packages []string, opts exportOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Export(ctx, app.ExportRequest{
		Bundle:     bundleName(cmd),
		Packages:   packages,
		AddProfile: opts.AddProfile,
		Method:     resolveString(cmd, opts.Method, "generation_method", "method"),
	})
	if err != nil {
		return err
	}
	return printExport(cmd, result)
}

func printExport(cmd *cobra.Command, result app.ExportResult) error {
	out := cmd.OutOrStdout()
	for _, name := range result.Skipped {
		fmt.Fprintf(out, "Package %s is excluded from export.\n", name)
	}
	if result.EmptySelection {
		fmt.Fprintln(out, "No packages were selected for export.")
		return nil
	}
	renderGenerationResults(out, result.Results)
	if result.Location != "" {
		fmt.Fprintf(out, "Output: %s\n", result.Location)
	}
	if failed := result.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d packages failed to export", failed, len(result.Results))
	}
	return nil
}
