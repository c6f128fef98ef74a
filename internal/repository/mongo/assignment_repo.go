package mongo

import (
	"context"
	"errors"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const assignmentCollectionName = "team_program_assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new Assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		client:     db.Client(),
		collection: db.Collection(assignmentCollectionName),
	}
}

// GetByTeamID returns the current assignment of teamID.
func (r *mongoAssignmentRepository) GetByTeamID(ctx context.Context, teamID string) (*domain.TeamProgramAssignment, error) {
	var a domain.TeamProgramAssignment
	err := r.collection.FindOne(ctx, bson.M{"teamId": teamID}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ReplaceForTeam deletes the team's previous assignment and inserts a in one
// transaction, so readers never see both or neither.
func (r *mongoAssignmentRepository) ReplaceForTeam(ctx context.Context, a *domain.TeamProgramAssignment) error {
	if a.ID == "" || a.TeamID == "" || a.ProgramID == "" {
		return errors.New("assignment requires id, teamId and programId")
	}

	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.collection.DeleteMany(sc, bson.M{"teamId": a.TeamID}); err != nil {
			return nil, err
		}
		_, err := r.collection.InsertOne(sc, a)
		return nil, err
	})
	return err
}

// List returns every current assignment, newest first.
func (r *mongoAssignmentRepository) List(ctx context.Context) ([]domain.TeamProgramAssignment, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoAssignmentRepository) ListByProgramID(ctx context.Context, programID string) ([]domain.TeamProgramAssignment, error) {
	return r.find(ctx, bson.M{"programId": programID})
}

func (r *mongoAssignmentRepository) find(ctx context.Context, filter bson.M) ([]domain.TeamProgramAssignment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "assignedAt", Value: -1}, {Key: "teamId", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	assignments := []domain.TeamProgramAssignment{}
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// EnsureAssignmentIndexes creates necessary indexes for the assignments collection.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// One current assignment per team.
			Keys:    bson.D{{Key: "teamId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "programId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "assignedAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
