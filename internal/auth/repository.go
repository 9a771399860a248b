package auth

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type DepartmentRepository struct {
	collection *mongo.Collection
}

func NewDepartmentRepository(db *mongo.Database) *DepartmentRepository {
	return &DepartmentRepository{collection: db.Collection("departments")}
}

// Create inserts a new department. The unique indexes on dept_name and email
// turn duplicates into ErrDeptExists.
func (r *DepartmentRepository) Create(ctx context.Context, dept *Department) error {
	_, err := r.collection.InsertOne(ctx, dept)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDeptExists
		}
		return err
	}
	return nil
}

func (r *DepartmentRepository) FindByEmail(ctx context.Context, email string) (*Department, error) {
	var dept Department
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&dept)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) FindByName(ctx context.Context, deptName string) (*Department, error) {
	var dept Department
	err := r.collection.FindOne(ctx, bson.M{"dept_name": deptName}).Decode(&dept)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) FindByResetToken(ctx context.Context, token string) (*Department, error) {
	var dept Department
	err := r.collection.FindOne(ctx, bson.M{"reset_token": token}).Decode(&dept)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

// Exists reports whether a department with the given display name is
// registered. Complaint and project creation validate their department
// references through this.
func (r *DepartmentRepository) Exists(ctx context.Context, deptName string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"dept_name": deptName})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DepartmentRepository) SetResetToken(ctx context.Context, email, token string, expiry time.Time) error {
	update := bson.M{"$set": bson.M{"reset_token": token, "reset_token_expiry": expiry}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the password hash and clears any reset token.
func (r *DepartmentRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	update := bson.M{
		"$set":   bson.M{"password_hash": passwordHash},
		"$unset": bson.M{"reset_token": "", "reset_token_expiry": ""},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
