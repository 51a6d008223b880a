package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/twitgraph/am"
	"github.com/teranos/twitgraph/cmd/twitgraph/commands"
	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/logger"
)

var rootCmd = &cobra.Command{
	Use:   "twitgraph",
	Short: "twitgraph - Microblog knowledge graph builder",
	Long: `twitgraph - Turns microblog posts into an RDF knowledge graph.

Posts are stored with their authors, replies, reposts, topics, links and
places. Parenthetical afterthoughts such as "@alice (knows @bob)" become
facts in a graph of their own, linked from the post that stated them.

Available commands:
  am      - Manage twitgraph configuration ("I am")
  ingest  - Read posts from a file, standard input or Bluesky
  dump    - Write the graph as N-Quads
  db      - Inspect or clear the graph store
  version - Show version information

Examples:
  twitgraph am init                         # Write ./am.toml with defaults
  twitgraph ingest statuses.jsonl           # Ingest a file of statuses
  tail -f spool.jsonl | twitgraph ingest -  # Ingest from standard input
  twitgraph ingest --atproto --stream       # Poll Bluesky, print new quads
  twitgraph dump --gzip -o graph.nq.gz      # Export the graph`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")

		jsonOutput := false
		if cfg, err := am.Load(); err == nil {
			jsonOutput = cfg.Log.JSON
		}

		if err := logger.InitializeWithLevel(jsonOutput, logger.VerbosityToLevel(verbosity)); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.DumpCmd)
	rootCmd.AddCommand(commands.IngestCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
