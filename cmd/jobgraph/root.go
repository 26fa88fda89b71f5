package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/jobgraph/config"
	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/logger"
	"github.com/kbukum/jobgraph/version"
)

// cliState is resolved once per invocation by the root command.
type cliState struct {
	configFile string
	envFile    string
	logLevel   string
	output     string

	cfg *Config
	log *logger.Logger
}

func execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]any{"error": err.Error()}
			if appErr, ok := apperrors.AsAppError(err); ok {
				errObj["code"] = appErr.Code
				if len(appErr.Details) > 0 {
					errObj["details"] = appErr.Details
				}
			}
			_ = printJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	st := &cliState{}

	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Job graph dependency engine",
		Long:          "Builds job graphs from pipeline descriptors, tracks task state and dispatches nodes once their dependencies are met.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if st.output != "table" && st.output != "json" {
				return fmt.Errorf("unsupported output format %q (table, json)", st.output)
			}
			return st.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&st.configFile, "config", "c", "", "Config file (default: search ./jobgraph.yml, ./config.yml)")
	rootCmd.PersistentFlags().StringVar(&st.envFile, "env-file", "", "Env file loaded before JOBGRAPH_* variables")
	rootCmd.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&st.output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(
		newValidateCmd(st),
		newGraphCmd(st),
		newSubmitCmd(st),
		newEventCmd(st),
		newInspectCmd(st),
		newJobsCmd(st),
		newForgetCmd(st),
		newRunCmd(st),
		newHealthCmd(st),
		newVersionCmd(),
	)
	return rootCmd
}

// load reads the config and builds the logger. CLI logs go to stderr so
// stdout carries only command output.
func (st *cliState) load(cmd *cobra.Command) error {
	cfg := &Config{}
	if err := config.Load(serviceName, cfg,
		config.WithConfigFile(st.configFile),
		config.WithEnvFile(st.envFile),
	); err != nil {
		return err
	}
	switch {
	case st.logLevel != "":
		cfg.Logging.Level = st.logLevel
	case cfg.Logging.Level == "" && !cfg.Debug && cmd.Name() != "run":
		// One-shot commands only report problems.
		cfg.Logging.Level = "warn"
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	st.cfg = cfg
	st.log = logger.NewWithWriter(&cfg.Logging, cfg.Name, cmd.ErrOrStderr())
	return nil
}

func (st *cliState) json() bool { return st.output == "json" }
