package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"config-packager/internal/app"
)

type importOptions struct {
	Force       bool
	Interactive bool
}

// selectItems asks the user which overridden items to import.
var selectItems = func(candidates []string) ([]string, error) {
	options := make([]huh.Option[string], 0, len(candidates))
	for _, candidate := range candidates {
		options = append(options, huh.NewOption(candidate, candidate))
	}
	var selected []string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Select configuration to import").
			Options(options...).
			Value(&selected),
	)).Run(); err != nil {
		return nil, err
	}
	return selected, nil
}

func newImportCommand() *cobra.Command {
	opts := importOptions{}
	cmd := &cobra.Command{
		Use:   "import <package[:item]>...",
		Short: "Revert active configuration to the exported values",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd, args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Import items that are not overridden as well")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Choose the overridden items to import")
	return cmd
}

func runImport(ctx context.Context, cmd *cobra.Command, targets []string, opts importOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	bundle := bundleName(cmd)
	if opts.Interactive {
		candidates, err := service.ImportCandidates(ctx, bundle)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), app.NoDifferencesMessage)
			return nil
		}
		targets, err = selectItems(candidates)
		if err != nil {
			return err
		}
		opts.Force = true
	}
	if len(targets) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), app.NoImportSelectionMessage)
		return nil
	}
	result, err := service.Import(ctx, app.ImportRequest{Bundle: bundle, Targets: targets, Force: opts.Force})
	if err != nil {
		return err
	}
	return printImport(cmd, result)
}

func newImportAllCommand() *cobra.Command {
	opts := importOptions{}
	cmd := &cobra.Command{
		Use:   "import-all",
		Short: "Revert every package to its exported values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := newAppService()
			if err != nil {
				return err
			}
			result, err := service.ImportAll(cmd.Context(), app.ImportAllRequest{Bundle: bundleName(cmd), Force: opts.Force})
			if err != nil {
				return err
			}
			return printImport(cmd, result)
		},
	}
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Import items that are not overridden as well")
	return cmd
}

func printImport(cmd *cobra.Command, result app.ImportResult) error {
	renderRevertReport(cmd.OutOrStdout(), result)
	if failed := result.Report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d items failed to import", failed, len(result.Report.Results))
	}
	return nil
}
