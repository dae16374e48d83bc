package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brogergvhs/mangaup/internal/config"
	"github.com/brogergvhs/mangaup/internal/providers"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Track a new series in the active config",
	RunE: func(cmd *cobra.Command, args []string) error {
		activePath, err := config.ActivePath()
		if err != nil {
			return fmt.Errorf("no active config; run `mangaup config init` first")
		}

		name, err := promptText("Series name", false)
		if err != nil {
			return err
		}

		idText, err := promptText("AniList media id", false)
		if err != nil {
			return err
		}
		anilistID, err := strconv.Atoi(idText)
		if err != nil || anilistID <= 0 {
			return fmt.Errorf("AniList id must be a positive number, got %q", idText)
		}

		sel := promptui.Select{
			Label: "Provider",
			Items: []string{providers.KindViz, providers.KindMangadex},
		}
		_, kind, err := sel.Run()
		if err != nil {
			return fmt.Errorf("selection cancelled")
		}

		siteID, err := promptText("Provider site id", false)
		if err != nil {
			return err
		}

		s := config.Series{
			Name:      name,
			AnilistID: anilistID,
			Provider:  kind,
			SiteID:    siteID,
		}

		if err := config.AppendSeries(activePath, s); err != nil {
			return err
		}

		fmt.Printf("Now tracking %q (%s)\n", s.Name, s.Provider)
		return nil
	},
}

func promptText(label string, allowEmpty bool) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Validate: func(s string) error {
			if !allowEmpty && strings.TrimSpace(s) == "" {
				return fmt.Errorf("cannot be empty")
			}
			return nil
		},
	}

	out, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("input cancelled")
	}

	return strings.TrimSpace(out), nil
}

func init() {
	rootCmd.AddCommand(addCmd)
}
