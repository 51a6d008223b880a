package commands

import (
	"compress/gzip"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/store"
)

// DumpCmd writes the graph as N-Quads
var DumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write the graph store as N-Quads",
	Long: `Write every assertion in the graph store as N-Quads.

Without --output the dump goes to standard output. An output path ending in
.gz is compressed; --gzip compresses standard output too.`,
	RunE: runDump,
}

var (
	dumpOutput string
	dumpGzip   bool
)

func init() {
	DumpCmd.Flags().StringVar(&dbPathFlag, "db", "", "Database path (overrides database.path)")
	DumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "Output file (default: standard output)")
	DumpCmd.Flags().BoolVar(&dumpGzip, "gzip", false, "Compress the output with gzip")
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if dumpOutput != "" {
		path := dumpOutput
		if dumpGzip && !strings.HasSuffix(path, ".gz") {
			path += ".gz"
		}
		n, err := store.DumpFile(cmd.Context(), s, path)
		if err != nil {
			return err
		}
		pterm.Success.Printf("Wrote %d assertions to %s\n", n, path)
		return nil
	}

	var w io.Writer = cmd.OutOrStdout()
	var zw *gzip.Writer
	if dumpGzip {
		zw = gzip.NewWriter(w)
		w = zw
	}
	if _, err := store.Dump(cmd.Context(), s, w); err != nil {
		return errors.Wrap(err, "dump failed")
	}
	if zw != nil {
		return errors.Wrap(zw.Close(), "finish gzip stream")
	}
	return nil
}
