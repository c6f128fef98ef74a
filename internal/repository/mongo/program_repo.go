package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/program-builder/internal/domain"
	"alcyxob/program-builder/internal/program"
	"alcyxob/program-builder/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	programCollectionName          = "programs"
	phaseCollectionName            = "phases"
	blockCollectionName            = "blocks"
	assignedExerciseCollectionName = "assigned_exercises"
	exerciseSetCollectionName      = "exercise_sets"
	programPhaseCollectionName     = "program_phases"
	phaseBlockCollectionName       = "phase_blocks"
	blockExerciseCollectionName    = "block_exercises"
	exerciseSetRelCollectionName   = "exercise_set_relations"
)

// Structure documents carry the owning program id so a program's subtree can
// be loaded and replaced with one filter per collection.
type phaseDoc struct {
	domain.Phase `bson:",inline"`
	ProgramID    string `bson:"programId"`
}

type blockDoc struct {
	domain.Block `bson:",inline"`
	ProgramID    string `bson:"programId"`
}

type assignedExerciseDoc struct {
	domain.AssignedExercise `bson:",inline"`
	ProgramID               string `bson:"programId"`
}

type exerciseSetDoc struct {
	domain.ExerciseSet `bson:",inline"`
	ProgramID          string `bson:"programId"`
}

type phaseBlockDoc struct {
	domain.PhaseBlock `bson:",inline"`
	ProgramID         string `bson:"programId"`
}

type blockExerciseDoc struct {
	domain.BlockExercise `bson:",inline"`
	ProgramID            string `bson:"programId"`
}

type exerciseSetRelDoc struct {
	domain.ExerciseSetRelation `bson:",inline"`
	ProgramID                  string `bson:"programId"`
}

// mongoProgramRepository implements repository.ProgramRepository.
type mongoProgramRepository struct {
	client         *mongo.Client
	programs       *mongo.Collection
	phases         *mongo.Collection
	blocks         *mongo.Collection
	exercises      *mongo.Collection
	sets           *mongo.Collection
	programPhases  *mongo.Collection
	phaseBlocks    *mongo.Collection
	blockExercises *mongo.Collection
	exerciseSets   *mongo.Collection
}

// NewMongoProgramRepository creates a program repository backed by MongoDB.
// Structure saves use multi-document transactions, so the deployment must be
// a replica set.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		client:         db.Client(),
		programs:       db.Collection(programCollectionName),
		phases:         db.Collection(phaseCollectionName),
		blocks:         db.Collection(blockCollectionName),
		exercises:      db.Collection(assignedExerciseCollectionName),
		sets:           db.Collection(exerciseSetCollectionName),
		programPhases:  db.Collection(programPhaseCollectionName),
		phaseBlocks:    db.Collection(phaseBlockCollectionName),
		blockExercises: db.Collection(blockExerciseCollectionName),
		exerciseSets:   db.Collection(exerciseSetRelCollectionName),
	}
}

// Create inserts a new program root at version 1.
func (r *mongoProgramRepository) Create(ctx context.Context, p *domain.Program) (string, error) {
	if p.Name == "" {
		return "", errors.New("program name is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Version = 1

	if _, err := r.programs.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrDuplicate
		}
		return "", err
	}
	return p.ID, nil
}

func (r *mongoProgramRepository) GetByID(ctx context.Context, id string) (*domain.Program, error) {
	var p domain.Program
	err := r.programs.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns all programs, newest first.
func (r *mongoProgramRepository) List(ctx context.Context) ([]domain.Program, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.programs.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	programs := []domain.Program{}
	if err = cursor.All(ctx, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// LoadStructure reads every entity and relation row stored under programID.
func (r *mongoProgramRepository) LoadStructure(ctx context.Context, programID string) (*program.Store, error) {
	if _, err := r.GetByID(ctx, programID); err != nil {
		return nil, err
	}

	var c program.Closure
	var err error
	if c.ProgramPhases, err = findScoped[domain.ProgramPhase](ctx, r.programPhases, programID); err != nil {
		return nil, err
	}

	phases, err := findScoped[phaseDoc](ctx, r.phases, programID)
	if err != nil {
		return nil, err
	}
	for _, d := range phases {
		c.Phases = append(c.Phases, d.Phase)
	}

	blocks, err := findScoped[blockDoc](ctx, r.blocks, programID)
	if err != nil {
		return nil, err
	}
	for _, d := range blocks {
		c.Blocks = append(c.Blocks, d.Block)
	}

	exercises, err := findScoped[assignedExerciseDoc](ctx, r.exercises, programID)
	if err != nil {
		return nil, err
	}
	for _, d := range exercises {
		c.Exercises = append(c.Exercises, d.AssignedExercise)
	}

	sets, err := findScoped[exerciseSetDoc](ctx, r.sets, programID)
	if err != nil {
		return nil, err
	}
	for _, d := range sets {
		c.Sets = append(c.Sets, d.ExerciseSet)
	}

	phaseBlocks, err := findScoped[phaseBlockDoc](ctx, r.phaseBlocks, programID)
	if err != nil {
		return nil, err
	}
	for _, d := range phaseBlocks {
		c.PhaseBlocks = append(c.PhaseBlocks, d.PhaseBlock)
	}

	blockExercises, err := findScoped[blockExerciseDoc](ctx, r.blockExercises, programID)
	if err != nil {
		return nil, err
	}
	for _, d := range blockExercises {
		c.BlockExercises = append(c.BlockExercises, d.BlockExercise)
	}

	exerciseSets, err := findScoped[exerciseSetRelDoc](ctx, r.exerciseSets, programID)
	if err != nil {
		return nil, err
	}
	for _, d := range exerciseSets {
		c.ExerciseSets = append(c.ExerciseSets, d.ExerciseSetRelation)
	}

	return program.FromClosure(c), nil
}

// SaveStructure replaces the program's subtree with the closure of programID
// in s. The version bump and every collection write share one transaction.
func (r *mongoProgramRepository) SaveStructure(ctx context.Context, programID string, expectedVersion int64, s *program.Store) (int64, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return 0, err
	}
	defer session.EndSession(ctx)

	c := program.ClosureOf(programID, s)
	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		version, err := r.bumpVersion(sc, programID, expectedVersion)
		if err != nil {
			return nil, err
		}
		if err := r.writeClosure(sc, programID, c); err != nil {
			return nil, err
		}
		return version, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

func (r *mongoProgramRepository) bumpVersion(ctx context.Context, programID string, expectedVersion int64) (int64, error) {
	filter := bson.M{"_id": programID}
	if expectedVersion != 0 {
		filter["version"] = expectedVersion
	}
	update := bson.M{
		"$inc": bson.M{"version": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Program
	err := r.programs.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return updated.Version, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, err
	}
	n, err := r.programs.CountDocuments(ctx, bson.M{"_id": programID})
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, repository.ErrNotFound
	}
	return 0, repository.ErrVersionConflict
}

func (r *mongoProgramRepository) writeClosure(ctx context.Context, programID string, c program.Closure) error {
	phases := make([]interface{}, 0, len(c.Phases))
	for _, e := range c.Phases {
		phases = append(phases, phaseDoc{Phase: e, ProgramID: programID})
	}
	blocks := make([]interface{}, 0, len(c.Blocks))
	for _, e := range c.Blocks {
		blocks = append(blocks, blockDoc{Block: e, ProgramID: programID})
	}
	exercises := make([]interface{}, 0, len(c.Exercises))
	for _, e := range c.Exercises {
		exercises = append(exercises, assignedExerciseDoc{AssignedExercise: e, ProgramID: programID})
	}
	sets := make([]interface{}, 0, len(c.Sets))
	for _, e := range c.Sets {
		sets = append(sets, exerciseSetDoc{ExerciseSet: e, ProgramID: programID})
	}
	programPhases := make([]interface{}, 0, len(c.ProgramPhases))
	for _, row := range c.ProgramPhases {
		programPhases = append(programPhases, row)
	}
	phaseBlocks := make([]interface{}, 0, len(c.PhaseBlocks))
	for _, row := range c.PhaseBlocks {
		phaseBlocks = append(phaseBlocks, phaseBlockDoc{PhaseBlock: row, ProgramID: programID})
	}
	blockExercises := make([]interface{}, 0, len(c.BlockExercises))
	for _, row := range c.BlockExercises {
		blockExercises = append(blockExercises, blockExerciseDoc{BlockExercise: row, ProgramID: programID})
	}
	exerciseSets := make([]interface{}, 0, len(c.ExerciseSets))
	for _, row := range c.ExerciseSets {
		exerciseSets = append(exerciseSets, exerciseSetRelDoc{ExerciseSetRelation: row, ProgramID: programID})
	}

	writes := []struct {
		coll *mongo.Collection
		docs []interface{}
	}{
		{r.phases, phases},
		{r.blocks, blocks},
		{r.exercises, exercises},
		{r.sets, sets},
		{r.programPhases, programPhases},
		{r.phaseBlocks, phaseBlocks},
		{r.blockExercises, blockExercises},
		{r.exerciseSets, exerciseSets},
	}
	for _, w := range writes {
		if err := replaceScoped(ctx, w.coll, programID, w.docs); err != nil {
			return err
		}
	}
	return nil
}

func replaceScoped(ctx context.Context, coll *mongo.Collection, programID string, docs []interface{}) error {
	if _, err := coll.DeleteMany(ctx, bson.M{"programId": programID}); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	_, err := coll.InsertMany(ctx, docs)
	return err
}

func findScoped[T any](ctx context.Context, coll *mongo.Collection, programID string) ([]T, error) {
	cursor, err := coll.Find(ctx, bson.M{"programId": programID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureProgramIndexes creates the programId index on every structure
// collection plus the parent lookups used by composition.
func EnsureProgramIndexes(ctx context.Context, db *mongo.Database) error {
	byProgram := mongo.IndexModel{Keys: bson.D{{Key: "programId", Value: 1}}, Options: options.Index()}

	plan := map[string][]mongo.IndexModel{
		programCollectionName: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index()},
		},
		phaseCollectionName:            {byProgram},
		blockCollectionName:            {byProgram},
		assignedExerciseCollectionName: {byProgram},
		exerciseSetCollectionName:      {byProgram},
		programPhaseCollectionName: {
			{Keys: bson.D{{Key: "programId", Value: 1}, {Key: "phaseId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		phaseBlockCollectionName: {
			byProgram,
			{Keys: bson.D{{Key: "phaseId", Value: 1}, {Key: "blockId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		blockExerciseCollectionName: {
			byProgram,
			{Keys: bson.D{{Key: "blockId", Value: 1}, {Key: "exerciseId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		exerciseSetRelCollectionName: {
			byProgram,
			{Keys: bson.D{{Key: "exerciseId", Value: 1}, {Key: "setId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	var errs []error
	for name, indexes := range plan {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
