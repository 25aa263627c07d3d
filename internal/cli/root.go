package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"config-packager/internal/app"
	"config-packager/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "CONFIG_PACKAGER"

type RootConfig struct {
	ConfigFile   string
	LogLevel     string
	ActiveDir    string
	ExportFolder string
	BundleFile   string
	Bundle       string
}

func Execute() {
	root := newRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errorMessage(err))
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "config-packager",
		Short:         "Package site configuration, detect drift and export it",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(log.Logger.WithContext(ctx))
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	flags.StringVar(&cfg.ActiveDir, "active-dir", "", "Directory holding the active configuration")
	flags.StringVar(&cfg.ExportFolder, "export-folder", "", "Directory holding exported packages")
	flags.StringVar(&cfg.BundleFile, "bundle-file", "", "Bundle definitions file")
	flags.StringVar(&cfg.Bundle, "bundle", "", "Bundle machine name")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("active_dir", flags.Lookup("active-dir"))
	_ = viper.BindPFlag("export_folder", flags.Lookup("export-folder"))
	_ = viper.BindPFlag("bundle_file", flags.Lookup("bundle-file"))
	_ = viper.BindPFlag("bundle", flags.Lookup("bundle"))

	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newListPackagesCommand())
	cmd.AddCommand(newExportCommand())
	cmd.AddCommand(newDiffCommand())
	cmd.AddCommand(newImportCommand())
	cmd.AddCommand(newImportAllCommand())
	cmd.AddCommand(newAddCommand())
	cmd.AddCommand(newComponentsCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("config-packager")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/config-packager")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// loadSettings layers the config file and environment over the defaults.
// The profile and diff sections reject unknown keys.
func loadSettings() (types.Settings, error) {
	settings := types.DefaultSettings()
	settings.ArchiveDir = os.TempDir()
	overrideString(&settings.ActiveDir, "active_dir")
	overrideString(&settings.ExportFolder, "export_folder")
	overrideString(&settings.BundleFile, "bundle_file")
	overrideString(&settings.ArchiveDir, "archive_dir")
	overrideString(&settings.GenerationMethod, "generation_method")
	if viper.IsSet("workers") {
		settings.Workers = viper.GetInt("workers")
	}
	if settings.Workers < 0 {
		return types.Settings{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("workers must not be negative")
	}
	if configTypes := viper.GetStringSlice("types"); len(configTypes) > 0 {
		settings.Types = configTypes
	}
	strict := func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
	}
	if viper.IsSet("profile") {
		if err := viper.UnmarshalKey("profile", &settings.Profile, strict); err != nil {
			return types.Settings{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid profile settings").
				WithCause(err)
		}
	}
	if viper.IsSet("diff") {
		if err := viper.UnmarshalKey("diff", &settings.Diff, strict); err != nil {
			return types.Settings{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid diff settings").
				WithCause(err)
		}
	}
	return settings, nil
}

func overrideString(target *string, key string) {
	if value := strings.TrimSpace(viper.GetString(key)); value != "" {
		*target = value
	}
}

func newAppService() (app.Service, error) {
	settings, err := loadSettings()
	if err != nil {
		return app.Service{}, err
	}
	return app.NewService(settings), nil
}

func exitCodeForError(err error) int {
	code := errbuilder.CodeOf(err)
	switch code {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeFailedPrecondition:
		return 4
	case errbuilder.CodeNotFound, errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
