package cli

import (
	"fmt"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload <diagram.xml>",
	Short: "Upload a DEXPI diagram and open an analysis session",
	Long: `Upload a DEXPI P&ID diagram to the analysis backend. The backend parses
it into a component/connection graph and returns a session id to chat
about, export, or delete later.

Only .xml files are accepted by the backend. The client sniffs the file
content first and warns when it does not look like XML, but the upload
is always attempted; the backend has the final word.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		defer func() { _ = logger.Sync() }()
		client, _ := newSessionClient(cfg, logger)

		path := args[0]
		w := cmd.OutOrStdout()

		if mtype, err := mimetype.DetectFile(path); err == nil {
			if !mtype.Is("text/xml") && !mtype.Is("application/xml") {
				printWarning(cmd.ErrOrStderr(), fmt.Sprintf("%s looks like %s, not XML; the backend will likely reject it",
					filepath.Base(path), mtype.String()))
			}
		}

		sessionID, err := client.CreateSessionFromFile(cmd.Context(), path)
		if err != nil {
			return err
		}

		if jsonOut {
			return writeJSON(w, map[string]string{
				"session_id": sessionID,
				"filename":   filepath.Base(path),
			})
		}

		printSuccess(w, fmt.Sprintf("Session %s created for %s", sessionID, filepath.Base(path)))
		fmt.Fprintln(w, labelStyle.Render(fmt.Sprintf("  next: plantquery chat %s", sessionID)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
