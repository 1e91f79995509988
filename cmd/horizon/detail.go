package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/horizon/internal/detail"
)

var (
	detailFallback string
	detailJSON     bool
)

var detailCmd = &cobra.Command{
	Use:   "detail <name>",
	Short: "Look up production-crew facts for a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		rec := a.orch.GetDetail(cmd.Context(), args[0], detailFallback)

		if detailJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}
		printRecord(rec)
		return nil
	},
}

func printRecord(rec detail.Record) {
	fmt.Println(rec.SubjectName)

	switch rec.Status {
	case detail.StatusError:
		fmt.Printf("  lookup failed: %s\n", rec.Reason)
		return
	case detail.StatusEmpty:
		fmt.Println("  no crew data found")
		return
	}

	printCredits("Directors", rec.Directors)
	printCredits("Writers", rec.Writers)
	printCredits("Composers", rec.Composers)
	printCredits("Producers", rec.Producers)
	if rec.Series != "" {
		fmt.Printf("  Series: %s\n", rec.Series)
	}
	if len(rec.RelatedGames) > 0 {
		fmt.Printf("  Related: %s\n", strings.Join(rec.RelatedGames, ", "))
	}
	for _, h := range rec.Highlights {
		fmt.Printf("  - %s\n", h)
	}
}

func printCredits(role string, credits []detail.Credit) {
	if len(credits) == 0 {
		return
	}
	fmt.Printf("  %s:\n", role)
	for _, c := range credits {
		if len(c.KnownFor) > 0 {
			fmt.Printf("    %s (%s)\n", c.Name, strings.Join(c.KnownFor, ", "))
			continue
		}
		fmt.Printf("    %s\n", c.Name)
	}
}

func init() {
	detailCmd.Flags().StringVar(&detailFallback, "fallback", "", "Alternate name to try when the primary yields nothing")
	detailCmd.Flags().BoolVar(&detailJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(detailCmd)
}
