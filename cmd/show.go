package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rparikh-liberate/smart-rpa-poc/internal/output"
	"github.com/rparikh-liberate/smart-rpa-poc/internal/store"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a recorded workflow document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st := store.New(cfg.Store.Dir, 0, log)
		wf, err := st.Fetch(args[0])
		if err != nil {
			return err
		}
		return output.Print(wf)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
