package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const teamCollectionName = "teams"

type mongoTeamRepository struct {
	collection *mongo.Collection
}

// NewMongoTeamRepository creates a team directory backed by MongoDB.
func NewMongoTeamRepository(db *mongo.Database) repository.TeamRepository {
	return &mongoTeamRepository{
		collection: db.Collection(teamCollectionName),
	}
}

func (r *mongoTeamRepository) Create(ctx context.Context, team *domain.Team) (string, error) {
	if team.Name == "" {
		return "", errors.New("team name is required")
	}
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	if team.PatientIDs == nil {
		team.PatientIDs = []string{}
	}
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, team); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrDuplicate
		}
		return "", err
	}
	return team.ID, nil
}

func (r *mongoTeamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	var team domain.Team
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (r *mongoTeamRepository) List(ctx context.Context) ([]domain.Team, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	teams := []domain.Team{}
	if err = cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// AddPatient adds patientID to the team's member list.
func (r *mongoTeamRepository) AddPatient(ctx context.Context, teamID, patientID string) error {
	update := bson.M{
		"$addToSet": bson.M{"patientIds": patientID}, // $addToSet prevents duplicates
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": teamID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTeamIndexes creates necessary indexes for the teams collection.
func EnsureTeamIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Finding the teams a patient belongs to.
			Keys:    bson.D{{Key: "patientIds", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
