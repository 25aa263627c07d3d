package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"config-packager/internal/app"
)

func newListPackagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-packages [package]",
		Short: "List packages and their status, or the items of one package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListPackages(cmd.Context(), cmd, args)
		},
	}
}

func runListPackages(ctx context.Context, cmd *cobra.Command, args []string) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	req := app.ListPackagesRequest{Bundle: bundleName(cmd)}
	if len(args) == 1 {
		req.Package = args[0]
	}
	result, err := service.ListPackages(ctx, req)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if req.Package != "" {
		rows := make([][]string, 0, len(result.Items))
		for _, item := range result.Items {
			rows = append(rows, []string{item.Label, item.Name, item.Type})
		}
		renderTable(out, []string{"Label", "Name", "Type"}, rows)
		return nil
	}
	rows := make([][]string, 0, len(result.Packages))
	for _, pkg := range result.Packages {
		rows = append(rows, []string{pkg.Name, pkg.MachineName, pkg.Version, string(pkg.Status), fmt.Sprintf("%d", pkg.Items)})
	}
	renderTable(out, []string{"Name", "Machine name", "Version", "Status", "Items"}, rows)
	return nil
}
