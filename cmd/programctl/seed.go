package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/logger"
	"alcyxob/program-builder/internal/program"
	"alcyxob/program-builder/internal/repository"
	"alcyxob/program-builder/internal/service"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	seedExercisesFile string
	seedTeamsFile     string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load exercise library and team files",
	Long: `Load YAML seed files. Entries whose id already exists are skipped.

Exercise file:
  exercises:
    - id: ex-123
      name: Cat-Cow
      muscleGroups: [Spine]
      equipment: [Mat]
      difficulty: beginner

Team file:
  teams:
    - id: team-7
      name: Lumbar group
      patientIds: [pt-1, pt-2]`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if seedExercisesFile == "" && seedTeamsFile == "" {
			return errors.New("nothing to seed: pass --exercises and/or --teams")
		}
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		exercises := service.NewExerciseService(e.repos.Exercises, e.log)
		if seedExercisesFile != "" {
			n, err := seedExercises(cmd.Context(), exercises, seedExercisesFile, e.log)
			if err != nil {
				return err
			}
			cmd.Printf("seeded %d exercises\n", n)
		}
		if seedTeamsFile != "" {
			n, err := seedTeams(cmd.Context(), e.repos.Teams, seedTeamsFile, e.log)
			if err != nil {
				return err
			}
			cmd.Printf("seeded %d teams\n", n)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedExercisesFile, "exercises", "", "YAML file with an exercises list")
	seedCmd.Flags().StringVar(&seedTeamsFile, "teams", "", "YAML file with a teams list")
}

type exerciseFile struct {
	Exercises []domain.Exercise `yaml:"exercises"`
}

type teamFile struct {
	Teams []domain.Team `yaml:"teams"`
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func seedExercises(ctx context.Context, svc service.ExerciseService, path string, log *logger.Logger) (int, error) {
	var f exerciseFile
	if err := readYAML(path, &f); err != nil {
		return 0, err
	}
	created := 0
	for _, ex := range f.Exercises {
		_, err := svc.CreateExercise(ctx, service.ExerciseInput{
			ID:           ex.ID,
			Name:         ex.Name,
			Description:  ex.Description,
			MuscleGroups: ex.MuscleGroups,
			Equipment:    ex.Equipment,
			Difficulty:   ex.Difficulty,
		})
		var verr *program.ValidationError
		switch {
		case err == nil:
			created++
		case errors.As(err, &verr) && verr.Field == "id":
			log.Info("exercise already present", "exercise_id", ex.ID)
		default:
			return created, fmt.Errorf("exercise %q: %w", ex.Name, err)
		}
	}
	return created, nil
}

func seedTeams(ctx context.Context, teams repository.TeamRepository, path string, log *logger.Logger) (int, error) {
	var f teamFile
	if err := readYAML(path, &f); err != nil {
		return 0, err
	}
	created := 0
	for i := range f.Teams {
		team := f.Teams[i]
		if team.Name == "" {
			return created, fmt.Errorf("team %d: name is required", i)
		}
		_, err := teams.Create(ctx, &team)
		switch {
		case err == nil:
			created++
		case errors.Is(err, repository.ErrDuplicate):
			log.Info("team already present", "team_id", team.ID)
		default:
			return created, fmt.Errorf("team %q: %w", team.Name, err)
		}
	}
	return created, nil
}
