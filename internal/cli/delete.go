package cli

import (
	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session from the backend and the local mirror",
	Long: `Delete a session. The backend is asked to remove it, and the local
mirror entry is dropped regardless of how that goes; a failed remote
delete is logged, not fatal. Run with --verbose to see it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		defer func() { _ = logger.Sync() }()
		client, _ := newSessionClient(cfg, logger)

		client.DeleteSession(cmd.Context(), args[0])

		w := cmd.OutOrStdout()
		if jsonOut {
			return writeJSON(w, map[string]string{"deleted": args[0]})
		}
		printSuccess(w, "Session "+args[0]+" deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
