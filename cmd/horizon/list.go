package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/horizon/internal/catalog"
	"github.com/vmunix/horizon/internal/horizon"
)

var (
	listYear      int
	listMonth     int
	listLimit     int
	listTranslate bool
	listFormat    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List upcoming releases for a month",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !cmd.Flags().Changed("translate") {
			listTranslate = a.cfg.Translate.Enabled
		}

		listing, err := a.orch.FetchListing(cmd.Context(), horizon.ListingRequest{
			Year:      listYear,
			Month:     listMonth,
			Limit:     listLimit,
			Translate: listTranslate,
		})
		if err != nil {
			return err
		}

		switch listFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(listing)
		case "table":
			printTable(listing.Games)
		default:
			printCompact(listing.Games)
		}
		fmt.Printf("\n%d release(s) in %d-%02d\n", listing.Total, listing.Year, listing.Month)
		return nil
	},
}

func printCompact(games []catalog.Game) {
	for _, g := range games {
		date := g.ReleaseDate
		if g.TBA() {
			date = "TBA"
		}
		name := g.Name
		if g.NameCN != "" {
			name = fmt.Sprintf("%s (%s)", g.Name, g.NameCN)
		}
		marker := " "
		if g.Notable {
			marker = "*"
		}
		fmt.Printf("%s %-10s  %s\n", marker, date, name)
	}
}

func printTable(games []catalog.Game) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tNAME\tDEVELOPER\tGENRES\tNOTABLE")
	for _, g := range games {
		date := g.ReleaseDate
		if g.TBA() {
			date = "TBA"
		}
		name := g.Name
		if g.NameCN != "" {
			name += " / " + g.NameCN
		}
		notable := ""
		if g.Notable {
			notable = "yes"
		}
		genres := "-"
		if len(g.Genres) > 0 {
			genres = strings.Join(g.Genres, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", date, name, g.Developer, genres, notable)
	}
	_ = w.Flush()
}

func init() {
	now := time.Now()
	listCmd.Flags().IntVarP(&listYear, "year", "y", now.Year(), "Year")
	listCmd.Flags().IntVarP(&listMonth, "month", "m", int(now.Month()), "Month (1-12)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 50, "Maximum number of games")
	listCmd.Flags().BoolVar(&listTranslate, "translate", false, "Populate localized names")
	listCmd.Flags().StringVar(&listFormat, "format", "compact", "Output format: compact, table, json")

	rootCmd.AddCommand(listCmd)
}
