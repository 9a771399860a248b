package project

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("project not found")

type ProjectRepository struct {
	collection *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{collection: db.Collection("projects")}
}

func (r *ProjectRepository) Insert(ctx context.Context, project *Project) (primitive.ObjectID, error) {
	res, err := r.collection.InsertOne(ctx, project)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Project, error) {
	var project Project
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) FindByDepartment(ctx context.Context, department string) ([]*Project, error) {
	return r.find(ctx, bson.M{"department": department})
}

func (r *ProjectRepository) FindAll(ctx context.Context) ([]*Project, error) {
	return r.find(ctx, bson.M{})
}

func (r *ProjectRepository) find(ctx context.Context, filter bson.M) ([]*Project, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var projects []*Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ApplyProgress writes a partial progress report: only the supplied fields
// are $set, photos are $push-ed atomically so concurrent reports never drop
// each other's entries.
func (r *ProjectRepository) ApplyProgress(ctx context.Context, id primitive.ObjectID, params UpdateParams, photos []Photo) error {
	set := bson.M{"updated_at": time.Now()}
	if params.Progress != nil {
		set["progress"] = *params.Progress
	}
	if params.RemainingBudget != nil {
		set["remaining_budget"] = *params.RemainingBudget
	}
	if params.Remarks != nil {
		set["remarks"] = *params.Remarks
	}

	update := bson.M{"$set": set}
	if len(photos) > 0 {
		update["$push"] = bson.M{"photos": bson.M{"$each": photos}}
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
