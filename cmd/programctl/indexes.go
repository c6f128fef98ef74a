package main

import (
	"github.com/spf13/cobra"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.repos.EnsureIndexes(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("indexes are up to date")
		return nil
	},
}
