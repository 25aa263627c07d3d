package cli

import (
	"context"

	"github.com/spf13/cobra"

	"config-packager/internal/app"
)

type componentsOptions struct {
	Exported    bool
	NotExported bool
}

func newComponentsCommand() *cobra.Command {
	opts := componentsOptions{}
	cmd := &cobra.Command{
		Use:   "components [patterns...]",
		Short: "List configuration items and the packages providing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComponents(cmd.Context(), cmd, args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Exported, "exported", false, "Show only items provided by a package")
	cmd.Flags().BoolVar(&opts.NotExported, "not-exported", false, "Show only items no package provides")
	return cmd
}

func runComponents(ctx context.Context, cmd *cobra.Command, patterns []string, opts componentsOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Components(ctx, app.ComponentsRequest{
		Bundle:      bundleName(cmd),
		Patterns:    patterns,
		Exported:    opts.Exported,
		NotExported: opts.NotExported,
	})
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(result.Components))
	for _, component := range result.Components {
		rows = append(rows, []string{component.Type, component.Name, component.Label, component.Package})
	}
	renderTable(cmd.OutOrStdout(), []string{"Type", "Name", "Label", "Package"}, rows)
	return nil
}
