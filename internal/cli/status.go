package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"config-packager/internal/app"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status [keys...]",
		Short: "Show the current bundle, folders and assignment methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd, args)
		},
	}
}

func runStatus(ctx context.Context, cmd *cobra.Command, keys []string) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Status(ctx, app.StatusRequest{Bundle: bundleName(cmd), Keys: keys})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	bundle := result.Bundle.Name
	if bundle == "" {
		bundle = "none"
	}
	fmt.Fprintf(out, "Current bundle:      %s (%s)\n", bundle, result.Bundle.MachineName)
	fmt.Fprintf(out, "Active config:       %s\n", result.ActiveDir)
	fmt.Fprintf(out, "Export folder:       %s\n", result.ExportFolder)
	fmt.Fprintf(out, "Assignment methods:  %s\n", strings.Join(result.AssignmentMethods, ", "))
	methods := make([]string, 0, len(result.GenerationMethods))
	for _, method := range result.GenerationMethods {
		methods = append(methods, method.ID)
	}
	fmt.Fprintf(out, "Generation methods:  %s\n", strings.Join(methods, ", "))
	for _, item := range result.Items {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Name:     %s\n", item.Name)
		fmt.Fprintf(out, "Type:     %s\n", item.Type)
		fmt.Fprintf(out, "Label:    %s\n", item.Label)
		fmt.Fprintf(out, "Package:  %s\n", item.Package)
		if len(item.Dependencies) > 0 {
			fmt.Fprintf(out, "Modules:  %s\n", strings.Join(item.Dependencies, ", "))
		}
	}
	if len(result.Names) > 0 {
		fmt.Fprintln(out)
		for _, name := range result.Names {
			fmt.Fprintln(out, name)
		}
	}
	return nil
}
