package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/sym"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Manage the graph store",
	Long: sym.DB + ` db — Manage the graph store

Examples:
  twitgraph db stats              # Count assertions, subjects and graphs
  twitgraph db clear --yes        # Remove every assertion`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show graph store statistics",
	RunE:  runDbStats,
}

var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every assertion from the graph store",
	RunE:  runDbClear,
}

var clearConfirmed bool

func init() {
	DbCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "Database path (overrides database.path)")
	dbClearCmd.Flags().BoolVar(&clearConfirmed, "yes", false, "Confirm clearing the store")

	DbCmd.AddCommand(dbStatsCmd)
	DbCmd.AddCommand(dbClearCmd)
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to query store statistics")
	}

	pterm.DefaultSection.Printf("%s Graph Store Statistics", sym.DB)
	return pterm.DefaultTable.WithData(pterm.TableData{
		{"Database Path", cfg.GetDatabasePath()},
		{"Assertions", fmt.Sprint(stats.Assertions)},
		{"Subjects", fmt.Sprint(stats.Subjects)},
		{"Graphs", fmt.Sprint(stats.Contexts)},
	}).Render()
}

func runDbClear(cmd *cobra.Command, args []string) error {
	if !clearConfirmed {
		return errors.WithHint(errors.New("refusing to clear the store without confirmation"), "pass --yes")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := s.Clear(cmd.Context())
	if err != nil {
		return err
	}
	pterm.Success.Printf("Removed %d assertions from %s\n", n, cfg.GetDatabasePath())
	return nil
}
