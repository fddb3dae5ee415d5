package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfolio/schememaster/pkg/pipeline"
	"github.com/openfolio/schememaster/pkg/schemes"
)

// importCmd ingests feed files into the store.
var importCmd = &cobra.Command{
	Use:   "import <source> <file>",
	Short: "Ingest a feed file",
	Long: `Ingest one feed file into the store. Source is one of:

  amfi  association catalog file
  cams  CAMS scheme master file
  kfin  KFin scheme master file

Rows are stored verbatim for audit, then normalized. Malformed rows are
skipped and counted; they never abort the batch.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := schemes.Source(args[0])
		if !source.IsValid() {
			return fmt.Errorf("unknown source %q", args[0])
		}

		p, err := newPipeline()
		if err != nil {
			return err
		}

		var result *pipeline.IngestResult
		if source == schemes.SourceAMFI {
			result, err = p.IngestCatalog(cmd.Context(), args[1])
		} else {
			result, err = p.IngestRTA(cmd.Context(), source, args[1])
		}
		if err != nil {
			return err
		}

		if err := p.Store().Save(); err != nil {
			return err
		}

		fmt.Printf("batch %s: %d rows, %d stored, %d skipped\n",
			result.Batch, result.Rows, result.Stored, result.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
