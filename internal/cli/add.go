package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"config-packager/internal/app"
)

func newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <package> <patterns...>",
		Short: "Add matching configuration to a package and write it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd.Context(), cmd, args[0], args[1:])
		},
	}
}

func runAdd(ctx context.Context, cmd *cobra.Command, pkg string, patterns []string) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Add(ctx, app.AddRequest{Bundle: bundleName(cmd), Package: pkg, Patterns: patterns})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, name := range result.Skipped {
		fmt.Fprintf(out, "%s is provided by another package, skipped.\n", name)
	}
	if result.EmptySelection {
		fmt.Fprintln(out, "No configuration matched the given patterns.")
		return nil
	}
	fmt.Fprintf(out, "Added to %s: %s\n", result.Package, strings.Join(result.Added, ", "))
	return printExport(cmd, result.Export)
}
