// Package cache decorates repositories with a Redis read-through cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/logger"
	"alcyxob/program-builder/internal/repository"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
)

const keyPrefix = "assignment:team:"

// assignmentCache serves GetByTeamID from Redis. Replace writes the new
// assignment through; reads only fill an empty key, so a slow read cannot
// put back an assignment that was replaced meanwhile. Redis failures are
// logged and fall through to the wrapped repository.
type assignmentCache struct {
	next repository.AssignmentRepository
	rdb  goredis.Cmdable
	ttl  time.Duration
	log  *logger.Logger
}

// NewAssignmentCache wraps next. A ttl of zero keeps entries until the next
// replace of the same team.
func NewAssignmentCache(next repository.AssignmentRepository, rdb goredis.Cmdable, ttl time.Duration, log *logger.Logger) repository.AssignmentRepository {
	return &assignmentCache{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With("repo", "AssignmentCache"),
	}
}

// NewClient connects to Redis at addr and pings it.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func teamKey(teamID string) string { return keyPrefix + teamID }

func (c *assignmentCache) GetByTeamID(ctx context.Context, teamID string) (*domain.TeamProgramAssignment, error) {
	raw, err := c.rdb.Get(ctx, teamKey(teamID)).Bytes()
	switch {
	case err == nil:
		a, derr := decode(raw)
		if derr == nil {
			return a, nil
		}
		c.log.Warn("dropping undecodable cache entry", "team_id", teamID, "error", derr)
		c.evict(ctx, teamID)
	case !errors.Is(err, goredis.Nil):
		c.log.Warn("assignment cache read failed", "team_id", teamID, "error", err)
	}

	a, err := c.next.GetByTeamID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if raw, err := encode(a); err == nil {
		if err := c.rdb.SetNX(ctx, teamKey(teamID), raw, c.ttl).Err(); err != nil {
			c.log.Warn("assignment cache fill failed", "team_id", teamID, "error", err)
		}
	}
	return a, nil
}

func (c *assignmentCache) ReplaceForTeam(ctx context.Context, a *domain.TeamProgramAssignment) error {
	if err := c.next.ReplaceForTeam(ctx, a); err != nil {
		return err
	}
	raw, err := encode(a)
	if err == nil {
		err = c.rdb.Set(ctx, teamKey(a.TeamID), raw, c.ttl).Err()
	}
	if err != nil {
		// A stale entry must not outlive the replace.
		c.log.Warn("assignment cache write failed", "team_id", a.TeamID, "error", err)
		c.evict(ctx, a.TeamID)
	}
	return nil
}

func (c *assignmentCache) List(ctx context.Context) ([]domain.TeamProgramAssignment, error) {
	return c.next.List(ctx)
}

func (c *assignmentCache) ListByProgramID(ctx context.Context, programID string) ([]domain.TeamProgramAssignment, error) {
	return c.next.ListByProgramID(ctx, programID)
}

func (c *assignmentCache) evict(ctx context.Context, teamID string) {
	if err := c.rdb.Del(ctx, teamKey(teamID)).Err(); err != nil {
		c.log.Warn("assignment cache evict failed", "team_id", teamID, "error", err)
	}
}

// Entries use BSON because the entity snapshot is not part of the JSON shape.
func encode(a *domain.TeamProgramAssignment) ([]byte, error) {
	return bson.Marshal(a)
}

func decode(raw []byte) (*domain.TeamProgramAssignment, error) {
	var a domain.TeamProgramAssignment
	if err := bson.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
