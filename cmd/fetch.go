package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pable/go-merc-metrics/internal/cards"
)

var fetchURL string

// fetchCmd downloads the card reference used to resolve hero roles.
var fetchCmd = &cobra.Command{
	Use:   "fetch-cards",
	Short: "Download the card reference used for hero roles",
	Long: `Downloads a card reference (a JSON array of cards with "id" and
"mercenaryRole") and stores it at --cards. URLs ending in .gz or .zst are
decompressed. The existing file is only replaced once the download decodes to a
non-empty reference.

Example:
  mercstats fetch-cards --url https://example.org/cards.json.gz --cards data/cards.json`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchURL, "url", "", "card reference URL (required)")
	_ = fetchCmd.MarkFlagRequired("url")
}

func runFetch(cmd *cobra.Command, args []string) error {
	n, err := cards.NewFetcher().Download(cmd.Context(), fetchURL, cardsPath)
	if err != nil {
		return fmt.Errorf("fetch card reference: %w", err)
	}
	log.Info().Str("url", fetchURL).Str("path", cardsPath).Int("cards", n).Msg("card reference updated")
	cOK.Printf("Saved %d cards", n)
	fmt.Printf(" to %s\n", cardsPath)
	return nil
}
