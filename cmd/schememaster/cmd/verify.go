package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openfolio/schememaster/pkg/schemes"
	"github.com/openfolio/schememaster/pkg/workflow"
)

var (
	actorFlag string
	noteFlag  string
)

// parseRtaKey parses a source/scheme/plan/option key argument. Plan and
// option may be empty, the slashes may not.
func parseRtaKey(arg string) (schemes.RtaKey, error) {
	parts := strings.Split(arg, "/")
	if len(parts) != 4 {
		return schemes.RtaKey{}, fmt.Errorf("key must be source/scheme/plan/option, got %q", arg)
	}
	source := schemes.Source(parts[0])
	if !source.IsValid() || source == schemes.SourceAMFI {
		return schemes.RtaKey{}, fmt.Errorf("unknown RTA source %q", parts[0])
	}
	return schemes.RtaKey{
		Source:     source,
		SchemeCode: parts[1],
		PlanCode:   parts[2],
		OptionCode: parts[3],
	}, nil
}

// verifyCmd groups the review workflow commands.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Review mappings",
	Long: `Review scheme mappings. Keys are written source/scheme/plan/option,
e.g. cams/ABC01/DP/G. Every decision is stamped with the acting reviewer.`,
}

var verifyAcceptCmd = &cobra.Command{
	Use:   "accept <key>",
	Short: "Verify a mapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withWorkflow(func(w *workflow.Workflow, key schemes.RtaKey) error {
			mapping, err := w.Verify(key, actorFlag)
			if err != nil {
				return err
			}
			fmt.Printf("verified %s -> %d\n", mapping.Key, mapping.Code)
			return nil
		}, args[0])
	},
}

var verifyRejectCmd = &cobra.Command{
	Use:   "reject <key>",
	Short: "Reject a mapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withWorkflow(func(w *workflow.Workflow, key schemes.RtaKey) error {
			mapping, err := w.Reject(key, actorFlag, noteFlag)
			if err != nil {
				return err
			}
			fmt.Printf("rejected %s\n", mapping.Key)
			return nil
		}, args[0])
	},
}

var verifyReviewCmd = &cobra.Command{
	Use:   "review <key>",
	Short: "Park a mapping in the review queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withWorkflow(func(w *workflow.Workflow, key schemes.RtaKey) error {
			mapping, err := w.RequestReview(key, actorFlag, noteFlag)
			if err != nil {
				return err
			}
			fmt.Printf("pending review: %s\n", mapping.Key)
			return nil
		}, args[0])
	},
}

var verifyMapCmd = &cobra.Command{
	Use:   "map <key> <code>",
	Short: "Manually map a key to a catalog code",
	Long: `Record a human-resolved mapping at full confidence, verified
immediately. An existing mapping for the key is retired to the audit
trail first.`,
	Args: cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		code, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("code must be numeric, got %q", args[1])
		}
		return withWorkflow(func(w *workflow.Workflow, key schemes.RtaKey) error {
			mapping, err := w.MapManually(key, code, actorFlag, noteFlag)
			if err != nil {
				return err
			}
			fmt.Printf("manually mapped %s -> %d\n", mapping.Key, mapping.Code)
			return nil
		}, args[0])
	},
}

// withWorkflow opens the store, runs fn against the workflow, and saves.
func withWorkflow(fn func(*workflow.Workflow, schemes.RtaKey) error, keyArg string) error {
	key, err := parseRtaKey(keyArg)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	if err := fn(workflow.New(s), key); err != nil {
		return err
	}
	return s.Save()
}

func init() {
	verifyCmd.PersistentFlags().StringVar(&actorFlag, "actor", "", "reviewer identity (required)")
	verifyCmd.PersistentFlags().StringVar(&noteFlag, "note", "", "review note")
	_ = verifyCmd.MarkPersistentFlagRequired("actor")

	verifyCmd.AddCommand(verifyAcceptCmd)
	verifyCmd.AddCommand(verifyRejectCmd)
	verifyCmd.AddCommand(verifyReviewCmd)
	verifyCmd.AddCommand(verifyMapCmd)
	rootCmd.AddCommand(verifyCmd)
}
