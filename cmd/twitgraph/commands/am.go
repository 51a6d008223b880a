package commands

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/twitgraph/am"
	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/sym"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.AM + " Manage twitgraph configuration",
	Long: sym.AM + ` am — Manage twitgraph configuration ("I am")

Display and manage twitgraph configuration settings.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (TWITGRAPH_* prefix)
3. Project config (am.toml in the working directory or a parent)
4. User config (~/.twitgraph/am.toml)
5. System config (/etc/twitgraph/am.toml)
6. Default values

Examples:
  twitgraph am show                       # Show current configuration
  twitgraph am show --format json         # Show configuration in JSON format
  twitgraph am show --sources             # Show where each setting came from
  twitgraph am init                       # Write ./am.toml with defaults
  twitgraph am policy drop_most_recent    # Change the overflow policy`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current twitgraph configuration from all sources",
	RunE:  runAmShow,
}

var amInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default settings",
	RunE:  runAmInit,
}

var amPolicyCmd = &cobra.Command{
	Use:   "policy <drop_oldest|drop_most_recent>",
	Short: "Set the distribution overflow policy",
	Long: `Set distribution.policy in the active config file (or ./am.toml).

A running "twitgraph ingest" watches its config file and applies the new
policy to assertions offered after the change.`,
	Args: cobra.ExactArgs(1),
	RunE: runAmPolicy,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var (
	configFormat string
	showSources  bool
	initPath     string
	initForce    bool
	policyPath   string
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json")
	amShowCmd.Flags().BoolVar(&showSources, "sources", false, "Show the source of every setting")
	amInitCmd.Flags().StringVar(&initPath, "path", "am.toml", "Where to write the config file")
	amInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file (a backup is kept)")
	amPolicyCmd.Flags().StringVar(&policyPath, "path", "", "Config file to modify (default: active config file, else ./am.toml)")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amInitCmd)
	AmCmd.AddCommand(amPolicyCmd)
	AmCmd.AddCommand(amValidateCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	if showSources {
		intro, err := am.GetConfigIntrospection()
		if err != nil {
			return err
		}
		data := pterm.TableData{{"Key", "Value", "Source", "From"}}
		for _, s := range intro.Settings {
			data = append(data, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
		}
		if intro.ConfigFile != "" {
			pterm.Info.Printf("Active config file: %s\n", intro.ConfigFile)
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	// Never print the app password
	shown := *cfg
	if shown.ATProto.AppPassword != "" {
		shown.ATProto.AppPassword = "********"
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(shown, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "toml":
		fmt.Fprintln(out, "# twitgraph configuration")
		if err := toml.NewEncoder(out).Encode(shown); err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json)", configFormat)
	}
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	if err := am.WriteDefault(initPath, initForce); err != nil {
		return err
	}
	pterm.Success.Printf("Wrote default configuration to %s\n", initPath)
	return nil
}

func runAmPolicy(cmd *cobra.Command, args []string) error {
	path := policyPath
	if path == "" {
		path = am.ActiveConfigFile()
	}
	if path == "" {
		path = "am.toml"
	}
	if err := am.SetDistributionPolicy(path, args[0]); err != nil {
		return err
	}
	pterm.Success.Printf("distribution.policy updated in %s\n", path)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}
