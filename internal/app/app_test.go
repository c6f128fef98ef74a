package app

import (
	"context"
	"testing"
	"time"

	"alcyxob/program-builder/internal/config"
	"alcyxob/program-builder/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	var cfg config.Config
	cfg.Database.Backend = config.BackendMemory
	cfg.JWT.Secret = "s"
	cfg.JWT.Expiration = time.Hour
	return cfg
}

func TestOpenMemoryRepositories(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()
	repos, closeAll, err := OpenRepositories(ctx, memoryConfig(), log)
	require.NoError(t, err)
	defer closeAll()

	assert.Nil(t, repos.DB)
	assert.NoError(t, repos.EnsureIndexes(ctx))

	files, err := OpenFileStorage(ctx, memoryConfig(), log)
	require.NoError(t, err)
	assert.Nil(t, files)

	svc := NewServices(memoryConfig(), repos, files, log)
	team, err := svc.Teams.CreateTeam(ctx, "Knees", "")
	require.NoError(t, err)
	got, err := svc.Teams.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Knees", got.Name)
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.Database.Backend = "sqlite"
	_, _, err := OpenRepositories(context.Background(), cfg, logger.NewNop())
	assert.ErrorContains(t, err, "sqlite")
}
