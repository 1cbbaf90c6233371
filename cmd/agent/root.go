package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/petasbytes/go-swarm/internal/config"
)

// rootOptions are the persistent flags shared by every subcommand. Flags
// override the config file and the environment.
type rootOptions struct {
	configPath string
	logLevel   string
	provider   string
	model      string
	observe    bool
}

var rootCmd = newRootCmd(&rootOptions{})

func newRootCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Multi-agent assistant for Gmail and Google Calendar",
		Long: `agent runs a triage agent that hands the conversation to a Gmail or a
Google Calendar specialist, which act on your account through tool calls.

Run "agent demo" for an offline shop scenario that needs only a model API key.`,
		SilenceUsage: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "path to a YAML config file")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&o.provider, "provider", "", "model provider: openai or anthropic")
	pf.StringVar(&o.model, "model", "", "model for every agent")
	pf.BoolVar(&o.observe, "observe", false, "write JSONL events under the artifacts dir")

	cmd.AddCommand(newChatCmd(o))
	cmd.AddCommand(newDemoCmd(o))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// SetVersion sets the version reported by the root command.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "agent version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// load resolves the config for cmd and applies any flags that were set.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.SetProvider(o.provider)
	}
	if flags.Changed("model") {
		cfg.Model = o.model
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("observe") {
		cfg.ObserveJSON = o.observe
	}
	cfg.Finalize()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
