package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openfolio/schememaster/pkg/schemes"
)

// listCmd groups the read-only listing commands.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored records",
}

var listSchemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "List catalog schemes",
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tAMC\tSCHEME\tCATEGORY")
		for _, scheme := range s.CatalogSchemes().List() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", scheme.Code, scheme.AMC, scheme.SchemeName, scheme.Category)
		}
		return w.Flush()
	},
}

var listMappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "List live mappings",
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tCODE\tCONFIDENCE\tSOURCE\tSTATE\tBY")
		for _, mapping := range s.Mappings().List() {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\n",
				mapping.Key, mapping.Code, mapping.MatchConfidence,
				mapping.MappingSource, mapping.State, mapping.VerifiedBy)
		}
		return w.Flush()
	},
}

var listReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List the review queue",
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tCODE\tCONFIDENCE\tNOTE")
		for _, mapping := range s.Mappings().ListByState(schemes.StatePendingReview) {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n",
				mapping.Key, mapping.Code, mapping.MatchConfidence, mapping.Note)
		}
		return w.Flush()
	},
}

var listMastersCmd = &cobra.Command{
	Use:   "masters",
	Short: "List published master rows",
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tSCHEME\tISIN\tRTA\tUPDATED")
		for _, master := range s.Masters().List() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				master.Key, master.SchemeName, master.ISIN, master.RtaSource,
				master.UpdatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

func init() {
	listCmd.AddCommand(listSchemesCmd)
	listCmd.AddCommand(listMappingsCmd)
	listCmd.AddCommand(listReviewCmd)
	listCmd.AddCommand(listMastersCmd)
	rootCmd.AddCommand(listCmd)
}
