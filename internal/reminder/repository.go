package reminder

import (
	"context"
	"time"

	"JanSamadhan/internal/complaint"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sentReminder records when a complaint was last nudged so departments are
// not mailed about the same complaint on every scheduler tick.
type sentReminder struct {
	ComplaintID string    `bson:"complaint_id"`
	SentAt      time.Time `bson:"sent_at"`
}

type ReminderRepository struct {
	complaints  *mongo.Collection
	departments *mongo.Collection
	reminders   *mongo.Collection
}

func NewReminderRepository(db *mongo.Database) *ReminderRepository {
	return &ReminderRepository{
		complaints:  db.Collection("complaints"),
		departments: db.Collection("departments"),
		reminders:   db.Collection("reminders"),
	}
}

// FindStalePending returns complaints still in the pending state that were
// registered before the cutoff.
func (r *ReminderRepository) FindStalePending(ctx context.Context, cutoff time.Time) ([]*complaint.Complaint, error) {
	filter := bson.M{
		"status":     complaint.StatusPending,
		"created_at": bson.M{"$lte": cutoff},
	}
	cursor, err := r.complaints.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var complaints []*complaint.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

// LastSent returns the most recent reminder times for the given complaint
// ids, keyed by complaint id. Missing entries were never reminded.
func (r *ReminderRepository) LastSent(ctx context.Context, complaintIDs []string) (map[string]time.Time, error) {
	if len(complaintIDs) == 0 {
		return map[string]time.Time{}, nil
	}
	cursor, err := r.reminders.Find(ctx, bson.M{"complaint_id": bson.M{"$in": complaintIDs}})
	if err != nil {
		return nil, err
	}
	var sent []sentReminder
	if err := cursor.All(ctx, &sent); err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(sent))
	for _, s := range sent {
		out[s.ComplaintID] = s.SentAt
	}
	return out, nil
}

// RecordSent upserts the reminder timestamp for a complaint.
func (r *ReminderRepository) RecordSent(ctx context.Context, complaintID string, at time.Time) error {
	filter := bson.M{"complaint_id": complaintID}
	update := bson.M{"$set": bson.M{"complaint_id": complaintID, "sent_at": at}}
	_, err := r.reminders.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// DepartmentEmail looks up the contact address for a department name.
func (r *ReminderRepository) DepartmentEmail(ctx context.Context, deptName string) (string, error) {
	var dept struct {
		Email string `bson:"email"`
	}
	err := r.departments.FindOne(ctx, bson.M{"dept_name": deptName}).Decode(&dept)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", nil
		}
		return "", err
	}
	return dept.Email, nil
}
