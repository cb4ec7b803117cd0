package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report backend health and AI availability",
	Long: `Probe the backend health endpoint and report what came back: whether
the backend is reachable and healthy, whether real AI analysis is
configured or answers fall back to canned responses, and how many
sessions the backend currently holds.

The command always exits zero; scripts should inspect the output or use
--json and read the "reachable" and "healthy" fields.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		defer func() { _ = logger.Sync() }()
		client, tc := newSessionClient(cfg, logger)

		w := cmd.OutOrStdout()
		st := client.APIStatus(cmd.Context())

		if jsonOut {
			return writeJSON(w, map[string]any{
				"backend":         cfg.Backend.URL,
				"reachable":       st.Reachable,
				"healthy":         st.Available,
				"ai_configured":   st.AIConfigured,
				"active_sessions": st.ActiveSessions,
				"breaker":         tc.BreakerState().String(),
			})
		}

		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Backend:"), cfg.Backend.URL)

		if !st.Reachable {
			printError(w, "Backend unreachable")
			return nil
		}
		if st.Available {
			printSuccess(w, "Backend healthy")
		} else {
			printWarning(w, "Backend responding but degraded")
		}

		if st.AIConfigured {
			printSuccess(w, "AI analysis configured")
		} else {
			printWarning(w, "AI not configured; answers use built-in analysis only")
		}

		fmt.Fprintf(w, "%s %d\n", labelStyle.Render("Active sessions:"), st.ActiveSessions)
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Circuit breaker:"), tc.BreakerState().String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
