package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type sessionRow struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Messages     int       `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List tracked sessions and backend activity",
	Long: `Show how many sessions the backend currently holds and list the ones
mirrored by this process. Mirrors live only for the lifetime of a
single invocation, so this is mostly useful inside chat --file runs and
scripts that keep the process alive; sessions created in earlier runs
still exist on the backend but appear only in the backend count.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		defer func() { _ = logger.Sync() }()
		client, _ := newSessionClient(cfg, logger)

		w := cmd.OutOrStdout()
		st := client.APIStatus(cmd.Context())

		rows := make([]sessionRow, 0)
		for _, s := range client.Sessions() {
			rows = append(rows, sessionRow{
				ID:           s.ID,
				Filename:     s.Filename,
				Messages:     len(s.Messages),
				CreatedAt:    s.CreatedAt,
				LastActivity: s.LastActivity,
			})
		}

		if jsonOut {
			return writeJSON(w, map[string]any{
				"backend_reachable": st.Reachable,
				"backend_active":    st.ActiveSessions,
				"local":             rows,
			})
		}

		if st.Reachable {
			printInfo(w, fmt.Sprintf("Backend holds %d active session(s)", st.ActiveSessions))
		} else {
			printWarning(w, "Backend unreachable; showing local mirrors only")
		}

		if len(rows) == 0 {
			printInfo(w, "No sessions are mirrored in this process")
			return nil
		}

		for _, r := range rows {
			fmt.Fprintf(w, "%s  %s\n", successStyle.Render(r.ID), r.Filename)
			fmt.Fprintln(w, labelStyle.Render(fmt.Sprintf("  %d message(s), created %s, last used %s",
				r.Messages, formatTime(r.CreatedAt), formatTime(r.LastActivity))))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
