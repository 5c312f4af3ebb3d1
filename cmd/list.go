package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rparikh-liberate/smart-rpa-poc/internal/output"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded workflows",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := store.New(cfg.Store.Dir, 0, log)
		summaries, err := st.List()
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No workflows recorded yet.")
			return nil
		}
		return output.Print(summaries)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
