package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitemapper/internal/database"
	"github.com/nao1215/sitemapper/internal/model"
)

// recordTimeLayout formats RecordedAt in the urls listing.
const recordTimeLayout = "2006-01-02 15:04:05"

// NewURLsCmd creates the urls command.
func NewURLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urls",
		Short: "List the URLs recorded by the last crawl",
		Long: `List prints every record in the visited URL database, oldest first.

The database keeps the URLs of the most recent crawl (or of several crawls
when they were run with --keep). Each record shows its ID, URL, visited flag
and the time it was recorded.

Examples:
  # List the records of the last crawl
  sitemapper urls

  # Print the records as JSON
  sitemapper urls --json

  # Use a different database directory
  sitemapper urls --db-dir ./crawl-data`,
		Args: cobra.NoArgs,
		RunE: runURLsCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Print records as JSON")
	cmd.Flags().Bool("visited-only", false, "Only list records whose visited flag is set")

	return cmd
}

// runURLsCmd executes the urls command.
func runURLsCmd(cmd *cobra.Command, _ []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	visitedOnly, err := cmd.Flags().GetBool("visited-only")
	if err != nil {
		return err
	}
	dbDir, err := getDBDir(cmd)
	if err != nil {
		return err
	}

	store, err := database.Open(dbDir, database.ExistingOptions())
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "No crawl database in %s. Run \"sitemapper crawl\" first.\n", dbDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	var records []model.VisitedURL
	if visitedOnly {
		records, err = store.ListVisited(cmd.Context())
	} else {
		records, err = store.Records(cmd.Context())
	}
	if err != nil {
		return err
	}

	if asJSON {
		return printRecordsJSON(cmd.OutOrStdout(), records)
	}
	return printRecords(cmd.OutOrStdout(), records)
}

// printRecords writes records as an aligned table.
func printRecords(w io.Writer, records []model.VisitedURL) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No URLs recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tURL\tVISITED\tRECORDED")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%t\t%s\n", r.ID, r.URL, r.Visited, r.RecordedAt.Format(recordTimeLayout))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nTotal: %d\n", len(records))
	return err
}

// printRecordsJSON writes records as an indented JSON array.
func printRecordsJSON(w io.Writer, records []model.VisitedURL) error {
	if records == nil {
		records = []model.VisitedURL{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
