package cmd

import (
	"fmt"

	"github.com/brogergvhs/mangaup/internal/config"

	"github.com/spf13/cobra"
)

var configRenameCmd = &cobra.Command{
	Use:   "rename <old_label> <new_label>",
	Short: "Rename an existing labeled config (<old_label> <new_label>)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Rename(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Renamed config %q to %q\n", args[0], args[1])

		return nil
	},
}

func init() {
	configCmd.AddCommand(configRenameCmd)
}
