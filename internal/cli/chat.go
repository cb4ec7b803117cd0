package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/plantquery/plantquery/internal/logging"
	"github.com/plantquery/plantquery/internal/session"
)

var (
	chatMessage string
	chatFile    string
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [session-id]",
	Short: "Ask questions about an uploaded diagram",
	Long: `Chat with the analysis backend about a session. Pass the session id from
a previous upload, or --file to upload a diagram and chat about it in
one invocation.

Without --message the command runs an interactive loop. Type a question
and press enter; "history" prints the local transcript and "exit" or
"quit" leaves. Failed questions are kept in the transcript as error
entries so the record shows what went wrong.

With --message a single question is sent and the bare reply is printed,
which composes well with pipes and --json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		defer func() { _ = logger.Sync() }()
		client, _ := newSessionClient(cfg, logger)

		w := cmd.OutOrStdout()

		var sessionID string
		switch {
		case chatFile != "" && len(args) > 0:
			return fmt.Errorf("pass a session id or --file, not both")
		case chatFile != "":
			sessionID, err = client.CreateSessionFromFile(cmd.Context(), chatFile)
			if err != nil {
				return err
			}
			if !jsonOut {
				printSuccess(w, fmt.Sprintf("Session %s created for %s", sessionID, filepath.Base(chatFile)))
			}
		case len(args) == 1:
			sessionID = args[0]
		default:
			return fmt.Errorf("a session id or --file is required")
		}

		if chatMessage != "" {
			reply, err := client.ProcessMessage(cmd.Context(), sessionID, chatMessage)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(w, map[string]string{
					"session_id": sessionID,
					"reply":      reply,
				})
			}
			fmt.Fprintln(w, reply)
			return nil
		}

		return runChatLoop(cmd, client, logger, cfg.Session.SweepInterval, sessionID)
	},
}

func runChatLoop(cmd *cobra.Command, client *session.Client, logger *logging.Logger, sweepEvery time.Duration, sessionID string) error {
	w := cmd.OutOrStdout()

	// The sweeper lives for the length of the conversation so idle
	// sessions from earlier --file uploads in this process get retired.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sweeper := session.NewSweeper(client, sweepEvery, logger)
	go sweeper.Run(ctx)

	printInfo(w, fmt.Sprintf("Chatting about session %s", sessionID))
	printInfo(w, `Type a question, "history" for the transcript, "exit" to leave.`)
	fmt.Fprintln(w)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(w, promptStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Fprintln(w)
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "history":
			printHistory(w, client, sessionID)
			continue
		}

		reply, err := client.ProcessMessage(ctx, sessionID, line)
		if err != nil {
			printError(w, err.Error())
			client.NoteError(sessionID, err.Error())
			continue
		}
		fmt.Fprintln(w, replyStyle.Render(reply))
		fmt.Fprintln(w)
	}
	return scanner.Err()
}

func printHistory(w io.Writer, client *session.Client, sessionID string) {
	s, ok := client.GetSession(sessionID)
	if !ok {
		printWarning(w, fmt.Sprintf("no local transcript for %s; it may have been created in another run", sessionID))
		return
	}
	if len(s.Messages) == 0 {
		printInfo(w, "transcript is empty")
		return
	}
	for _, m := range s.Messages {
		tag := labelStyle.Render(fmt.Sprintf("[%s %-9s]", m.Timestamp.Local().Format("15:04:05"), m.Role))
		fmt.Fprintf(w, "%s %s\n", tag, m.Content)
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single question and print the reply")
	chatCmd.Flags().StringVarP(&chatFile, "file", "f", "", "Upload this diagram first and chat about the new session")
}
