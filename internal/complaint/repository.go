package complaint

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound    = errors.New("complaint not found")
	ErrDuplicateID = errors.New("complaint id already exists")
)

type ComplaintRepository struct {
	collection *mongo.Collection
}

func NewComplaintRepository(db *mongo.Database) *ComplaintRepository {
	return &ComplaintRepository{collection: db.Collection("complaints")}
}

// Insert persists a new complaint. The unique index on complaint_id turns a
// generated-id collision into ErrDuplicateID so the caller can retry with a
// fresh id.
func (r *ComplaintRepository) Insert(ctx context.Context, complaint *Complaint) error {
	_, err := r.collection.InsertOne(ctx, complaint)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

func (r *ComplaintRepository) FindByComplaintID(ctx context.Context, complaintID string) (*Complaint, error) {
	var complaint Complaint
	err := r.collection.FindOne(ctx, bson.M{"complaint_id": complaintID}).Decode(&complaint)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &complaint, nil
}

func (r *ComplaintRepository) FindByDepartment(ctx context.Context, department string) ([]*Complaint, error) {
	return r.find(ctx, bson.M{"department": department})
}

func (r *ComplaintRepository) FindAll(ctx context.Context) ([]*Complaint, error) {
	return r.find(ctx, bson.M{})
}

func (r *ComplaintRepository) find(ctx context.Context, filter bson.M) ([]*Complaint, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var complaints []*Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

// AppendTransition records one status change in a single atomic update: the
// status field is set and the history entry plus any supporting documents
// are pushed in the same UpdateOne, so concurrent transitions on the same
// complaint can never drop each other's history entries.
func (r *ComplaintRepository) AppendTransition(ctx context.Context, complaintID string, entry RemarkEntry, docs []SupportingDocument) error {
	push := bson.M{"remarks_history": entry}
	if len(docs) > 0 {
		push["supporting_documents"] = bson.M{"$each": docs}
	}
	update := bson.M{
		"$set":  bson.M{"status": entry.Status},
		"$push": push,
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"complaint_id": complaintID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
