package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// mergeCmd publishes master rows from verified mappings.
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Publish master rows from verified mappings",
	Long: `Compose one master row per verified mapping: identity fields from
the catalog scheme, transactional fields from the RTA record. Re-merging
unchanged inputs writes nothing; rows without a verified mapping are pruned.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}

		result, err := p.Merge(cmd.Context())
		if err != nil {
			return err
		}
		if err := p.Store().Save(); err != nil {
			return err
		}

		fmt.Printf("%d created, %d updated, %d unchanged, %d pruned, %d skipped\n",
			result.Created, result.Updated, result.Unchanged, result.Pruned, len(result.Skipped))
		for _, skipped := range result.Skipped {
			fmt.Printf("  skipped: %v\n", skipped)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
