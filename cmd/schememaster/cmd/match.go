package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// matchCmd runs the matching pass over stored records.
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Propose and auto-verify scheme mappings",
	Long: `Run the matching pass over every stored RTA record: exact ISIN
matches first, name similarity as the fallback. Exact and high-similarity
proposals verify automatically; the rest park in the review queue.

Manual and already-decided mappings are never touched.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}

		result, err := p.Match(cmd.Context())
		if err != nil {
			return err
		}
		if err := p.Store().Save(); err != nil {
			return err
		}

		fmt.Printf("%d proposed, %d auto-verified, %d ambiguous, %d unmatched, %d skipped\n",
			len(result.Proposed), result.AutoVerified, len(result.Ambiguous),
			len(result.Unmatched), result.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
}
