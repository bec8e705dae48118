package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nimburion/remotestore/pkg/config"
	"github.com/nimburion/remotestore/pkg/version"
)

func newVersionCommand(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Current(name)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Service:    %s\n", info.Service)
			fmt.Fprintf(out, "Version:    %s\n", info.Version)
			fmt.Fprintf(out, "Commit:     %s\n", info.Commit)
			fmt.Fprintf(out, "Build Time: %s\n", info.BuildTime)
			fmt.Fprintf(out, "Go:         %s\n", info.GoVersion)
		},
	}
}

func newConfigCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := config.NewViperLoader(flags.configFile, resolveEnvPrefix(flags.envPrefix)).WithFlags(cmd.Flags())
			if _, err := loader.Load(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			settings := loader.AllSettings()
			redactSettings(settings)
			formatted, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("format config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(formatted)
			return err
		},
	}
}

// redactSettings masks credentials in the nested settings map.
func redactSettings(settings map[string]any) {
	dataStore, ok := settings["data_store"].(map[string]any)
	if !ok {
		return
	}
	redis, ok := dataStore["redis"].(map[string]any)
	if !ok {
		return
	}
	if url, ok := redis["url"].(string); ok {
		redis["url"] = config.RedactURL(url)
	}
}
