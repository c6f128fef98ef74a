package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"alcyxob/program-builder/internal/service"

	"github.com/spf13/cobra"
)

var showTeamID string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a team's assigned program structure as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if showTeamID == "" {
			return errors.New("--team is required")
		}
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		assignments := service.NewAssignmentService(e.repos.Assignments, e.repos.Programs, e.repos.Teams, nil, e.log)
		tree, err := assignments.LoadTeamProgramStructure(cmd.Context(), showTeamID)
		if err != nil {
			return err
		}
		if tree == nil {
			return fmt.Errorf("team %s has no assigned program", showTeamID)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	},
}

func init() {
	showCmd.Flags().StringVar(&showTeamID, "team", "", "team id")
}
