package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfolio/schememaster/pkg/schemes"
)

var (
	runCatalogFile string
	runCAMSFile    string
	runKFinFile    string
)

// runCmd executes a full pipeline pass.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full pipeline pass",
	Long: `Ingest the given feed files, then match and merge in one pass.
Files are ingested in parallel; matching and merging run after every
ingest has finished. Omitted files leave the stored records for that
source as they are.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rtaPaths := make(map[schemes.Source]string)
		if runCAMSFile != "" {
			rtaPaths[schemes.SourceCAMS] = runCAMSFile
		}
		if runKFinFile != "" {
			rtaPaths[schemes.SourceKFin] = runKFinFile
		}
		if runCatalogFile == "" && len(rtaPaths) == 0 {
			return fmt.Errorf("nothing to do: pass --amfi, --cams, or --kfin")
		}

		p, err := newPipeline()
		if err != nil {
			return err
		}

		result, err := p.Run(cmd.Context(), runCatalogFile, rtaPaths)
		if err != nil {
			return err
		}

		for _, ingest := range result.Ingests {
			fmt.Printf("%s: %d rows, %d stored, %d skipped\n",
				ingest.Source, ingest.Rows, ingest.Stored, ingest.Skipped)
		}
		fmt.Printf("match: %d proposed, %d auto-verified, %d ambiguous, %d unmatched\n",
			len(result.Match.Proposed), result.Match.AutoVerified,
			len(result.Match.Ambiguous), len(result.Match.Unmatched))
		fmt.Printf("merge: %d created, %d updated, %d unchanged, %d pruned\n",
			result.Merge.Created, result.Merge.Updated, result.Merge.Unchanged, result.Merge.Pruned)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runCatalogFile, "amfi", "", "association catalog file")
	runCmd.Flags().StringVar(&runCAMSFile, "cams", "", "CAMS scheme master file")
	runCmd.Flags().StringVar(&runKFinFile, "kfin", "", "KFin scheme master file")
	rootCmd.AddCommand(runCmd)
}
