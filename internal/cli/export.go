package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	"github.com/plantquery/plantquery/internal/graphml"
)

var (
	exportOut      string
	exportCompress bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Download a session's plant graph as GraphML",
	Long: `Download the component/connection graph of a session as a GraphML file.
The file is written to the export directory (--out, EXPORT_DIR, or the
working directory) named after the session id. With --compress the
payload is gzipped and the file gains a .gz suffix.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if exportOut != "" {
			cfg.Export.Dir = exportOut
		}
		if cmd.Flags().Changed("compress") {
			cfg.Export.Compress = exportCompress
		}
		logger := newLogger(cfg)
		defer func() { _ = logger.Sync() }()
		client, _ := newSessionClient(cfg, logger)

		w := cmd.OutOrStdout()
		path, err := client.DownloadExport(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if jsonOut {
			return writeJSON(w, map[string]string{
				"session_id": args[0],
				"path":       path,
			})
		}

		printSuccess(w, "Export saved to "+path)
		if summary := summarizeExport(path); summary != "" {
			fmt.Fprintln(w, labelStyle.Render("  "+summary))
		}
		return nil
	},
}

// summarizeExport reads the file back and describes the graph. Purely
// informational; an empty string means the file could not be summarized.
func summarizeExport(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return ""
		}
		defer gz.Close()
		r = gz
	}

	doc, err := graphml.Decode(r)
	if err != nil {
		return ""
	}
	stats := doc.Stats()
	return fmt.Sprintf("%d components, %d connections, %d subsystem(s)",
		stats.Components, stats.Connections, stats.Subsystems)
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Directory to write the export into")
	exportCmd.Flags().BoolVarP(&exportCompress, "compress", "c", false, "Gzip the export")
}
