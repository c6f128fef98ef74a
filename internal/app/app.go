// Package app wires configuration into repositories and services for the
// server and the programctl tool.
package app

import (
	"context"
	"fmt"
	"time"

	"alcyxob/program-builder/internal/api"
	"alcyxob/program-builder/internal/config"
	"alcyxob/program-builder/internal/logger"
	"alcyxob/program-builder/internal/repository"
	"alcyxob/program-builder/internal/repository/cache"
	"alcyxob/program-builder/internal/repository/memory"
	"alcyxob/program-builder/internal/repository/mongo"
	"alcyxob/program-builder/internal/service"
	"alcyxob/program-builder/internal/storage"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

// Repositories is the storage layer selected by database.backend.
type Repositories struct {
	Users       repository.UserRepository
	Exercises   repository.ExerciseRepository
	Teams       repository.TeamRepository
	Programs    repository.ProgramRepository
	Assignments repository.AssignmentRepository

	// DB is nil for the memory backend.
	DB *mongodriver.Database
}

// OpenRepositories connects the configured backend and, when redis.addr is
// set, wraps the assignment repository in the read-through cache. The
// returned close func releases every connection it opened.
func OpenRepositories(ctx context.Context, cfg config.Config, log *logger.Logger) (*Repositories, func(), error) {
	var (
		repos   *Repositories
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Database.Backend {
	case config.BackendMemory:
		log.Warn("using in-memory repositories; data is lost on exit")
		repos = &Repositories{
			Users:       memory.NewUserRepository(),
			Exercises:   memory.NewExerciseRepository(),
			Teams:       memory.NewTeamRepository(),
			Programs:    memory.NewProgramRepository(),
			Assignments: memory.NewAssignmentRepository(),
		}
	case config.BackendMongo, "":
		client, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		closers = append(closers, func() {
			if err := mongo.DisconnectDB(client); err != nil {
				log.Error("failed to disconnect mongodb", "error", err)
			}
		})
		db := client.Database(cfg.Database.Name)
		log.Info("database connection established", "database", cfg.Database.Name)
		repos = &Repositories{
			Users:       mongo.NewMongoUserRepository(db),
			Exercises:   mongo.NewMongoExerciseRepository(db),
			Teams:       mongo.NewMongoTeamRepository(db),
			Programs:    mongo.NewMongoProgramRepository(db),
			Assignments: mongo.NewMongoAssignmentRepository(db),
			DB:          db,
		}
	default:
		return nil, nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}

	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		repos.Assignments = cache.NewAssignmentCache(repos.Assignments, rdb, cfg.Redis.TTL, log)
		log.Info("assignment cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}

	return repos, closeAll, nil
}

// indexTimeout bounds index creation.
const indexTimeout = time.Minute

// EnsureIndexes creates the mongo indexes. It is a no-op for the memory backend.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	if r.DB == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	return mongo.EnsureIndexes(ctx, r.DB)
}

// OpenFileStorage returns S3 storage when configured. A nil FileStorage
// disables exports.
func OpenFileStorage(ctx context.Context, cfg config.Config, log *logger.Logger) (storage.FileStorage, error) {
	if !cfg.S3.Enabled() {
		log.Warn("s3 is not configured; assignment export is disabled")
		return nil, nil
	}
	return storage.NewS3Storage(ctx, cfg.S3, log)
}

// NewServices wires the service layer. files may be nil.
func NewServices(cfg config.Config, repos *Repositories, files storage.FileStorage, log *logger.Logger) api.Services {
	assignments := service.NewAssignmentService(repos.Assignments, repos.Programs, repos.Teams, files, log)
	return api.Services{
		Auth:        service.NewAuthService(repos.Users, cfg.JWT.Secret, cfg.JWT.Expiration, log),
		Exercises:   service.NewExerciseService(repos.Exercises, log),
		Teams:       service.NewTeamService(repos.Teams, repos.Users, log),
		Programs:    service.NewProgramService(repos.Programs, repos.Exercises, repos.Assignments, repos.Teams, log),
		Assignments: assignments,
		Builder:     service.NewBuilderService(repos.Programs, repos.Teams, assignments, service.DefaultSessionIdleTimeout, log),
	}
}

