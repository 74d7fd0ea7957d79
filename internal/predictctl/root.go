package predictctl

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"predictd/pkg/types"
)

// Config carries the connection settings shared by every subcommand.
type Config struct {
	Server  string
	Timeout int
}

func defaultConfig() *Config {
	return &Config{
		Server:  envStr("PREDICTCTL_SERVER", "http://localhost:8080"),
		Timeout: envInt("PREDICTCTL_TIMEOUT", 30),
	}
}

// buildRootCmd is a convenience for help-only fallbacks.
func buildRootCmd() *cobra.Command { return buildRootCmdWith(defaultConfig()) }

// buildRootCmdWith constructs the Cobra command tree over a shared Config.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "predictctl",
		Short:         "Query and drive a predictd server from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags -> Config
	root.PersistentFlags().String("server", cfg.Server, "predictd base URL (defaults PREDICTCTL_SERVER or http://localhost:8080)")
	root.PersistentFlags().Int("timeout", cfg.Timeout, "Request timeout in seconds (defaults PREDICTCTL_TIMEOUT or 30)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if f := cmd.InheritedFlags().Lookup("server"); f != nil {
			if v := f.Value.String(); v != "" {
				cfg.Server = v
			}
		}
		if f := cmd.InheritedFlags().Lookup("timeout"); f != nil {
			var n int
			_, _ = fmt.Sscanf(f.Value.String(), "%d", &n)
			if n != 0 {
				cfg.Timeout = n
			}
		}
	}

	newClient := func() *Client {
		return NewClient(cfg.Server, &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second})
	}

	var (
		predictTopN  int
		predictTemp  float64
		predictModel string
	)
	predictCmd := &cobra.Command{Use: "predict <text>", Short: "One-shot next-token prediction", Example: "  predictctl predict \"The weather today is\"", Args: cobra.MinimumNArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		req := newPredictRequest(strings.Join(args, " "), predictTemp, predictTopN, predictModel)
		res, err := newClient().Predict(cmd.Context(), req)
		if err != nil {
			return err
		}
		WriteResult(cmd.OutOrStdout(), res)
		return nil
	}}
	predictCmd.Flags().IntVar(&predictTopN, "top-n", 0, "Number of candidates (1-10, 0 uses the server default)")
	predictCmd.Flags().Float64Var(&predictTemp, "temperature", 0, "Sampling temperature (0 uses the server default)")
	predictCmd.Flags().StringVar(&predictModel, "model", "", "Model profile id (empty uses the server default)")
	root.AddCommand(predictCmd)

	liveCmd := &cobra.Command{Use: "live", Short: "Interactive live view of the prediction session", Example: "  predictctl live", RunE: func(cmd *cobra.Command, args []string) error {
		// The event stream outlives any single request timeout.
		return NewLive(NewClient(cfg.Server, &http.Client{})).Run(cmd.Context())
	}}
	root.AddCommand(liveCmd)

	stateCmd := &cobra.Command{Use: "state", Short: "Print the current session snapshot", RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := newClient().State(cmd.Context())
		if err != nil {
			return err
		}
		WriteSnapshot(cmd.OutOrStdout(), snap)
		return nil
	}}
	root.AddCommand(stateCmd)

	historyCmd := &cobra.Command{Use: "history", Short: "Print retained predictions, most recent first", RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := newClient().History(cmd.Context())
		if err != nil {
			return err
		}
		WriteHistory(cmd.OutOrStdout(), entries)
		return nil
	}}
	root.AddCommand(historyCmd)

	modelsCmd := &cobra.Command{Use: "models", Short: "List configured model profiles", RunE: func(cmd *cobra.Command, args []string) error {
		models, err := newClient().Models(cmd.Context())
		if err != nil {
			return err
		}
		WriteModels(cmd.OutOrStdout(), models)
		return nil
	}}
	root.AddCommand(modelsCmd)

	statusCmd := &cobra.Command{Use: "status", Short: "Show server counters and host usage", RunE: func(cmd *cobra.Command, args []string) error {
		st, err := newClient().Status(cmd.Context())
		if err != nil {
			return err
		}
		WriteStatus(cmd.OutOrStdout(), st)
		return nil
	}}
	root.AddCommand(statusCmd)

	credentialCmd := &cobra.Command{Use: "credential [key]", Short: "Show or set the server's API key", Example: "  predictctl credential\n  predictctl credential sk-abcdef0123456789\n  predictctl credential \"\"   # clear the runtime key", Args: cobra.MaximumNArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		if len(args) == 1 {
			status, err := c.SetCredential(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeCredential(cmd, status)
			return nil
		}
		status, err := c.Credential(cmd.Context())
		if err != nil {
			return err
		}
		writeCredential(cmd, status)
		return nil
	}}
	root.AddCommand(credentialCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	root.AddCommand(completionCmd)

	return root
}

func writeCredential(cmd *cobra.Command, st types.CredentialStatus) {
	if !st.Present {
		fmt.Fprintln(cmd.OutOrStdout(), "credential: absent")
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "credential: %s (%s)\n", st.Masked, st.Source)
}

func newPredictRequest(text string, temperature float64, topN int, model string) types.PredictRequest {
	return types.PredictRequest{
		Text:        text,
		Temperature: temperature,
		TopN:        topN,
		Model:       model,
	}
}

// MainWithArgs is a testable variant of Main that accepts args explicitly.
// It returns an exit code (0 for success, non-zero on error).
func MainWithArgs(args []string) int {
	cfg := defaultConfig()
	root := buildRootCmdWith(cfg)
	root.SetArgs(args)
	if len(args) == 0 {
		_ = root.Help()
		return 2
	}
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code for use by cmd/predictctl.
func Main() int { return MainWithArgs(os.Args[1:]) }
