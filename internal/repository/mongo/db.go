package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Connect can succeed against an unresponsive server, so ping separately.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. Failures are
// collected so one bad collection does not hide the others.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	var errs []error
	if err := EnsureUserIndexes(ctx, db.Collection(userCollectionName)); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", userCollectionName, err))
	}
	if err := EnsureExerciseIndexes(ctx, db.Collection(exerciseCollectionName)); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", exerciseCollectionName, err))
	}
	if err := EnsureTeamIndexes(ctx, db.Collection(teamCollectionName)); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", teamCollectionName, err))
	}
	if err := EnsureAssignmentIndexes(ctx, db.Collection(assignmentCollectionName)); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", assignmentCollectionName, err))
	}
	if err := EnsureProgramIndexes(ctx, db); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
