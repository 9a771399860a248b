package project

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Photo is one progress photo, appended during daily reporting and never
// removed.
type Photo struct {
	URL        string    `bson:"url" json:"url"`
	Key        string    `bson:"key" json:"key"`
	UploadedAt time.Time `bson:"uploaded_at" json:"uploadedAt"`
}

type GeoLocation struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Project is a departmental work item tracked through daily progress
// reporting. Progress stays within [0,100], enforced at every write.
type Project struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Department      string             `bson:"department" json:"department"`
	Name            string             `bson:"name" json:"name"`
	Progress        int                `bson:"progress" json:"progress"`
	StartDate       string             `bson:"start_date" json:"startDate"`
	EndDate         string             `bson:"end_date" json:"endDate"`
	BudgetAllocated float64            `bson:"budget_allocated" json:"budgetAllocated"`
	RemainingBudget float64            `bson:"remaining_budget" json:"remainingBudget"`
	ContactPerson   string             `bson:"contact_person" json:"contactPerson"`
	Designation     string             `bson:"designation" json:"designation"`
	ContactNumber   string             `bson:"contact_number" json:"contactNumber"`
	Remarks         string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	Photos          []Photo            `bson:"photos" json:"photos"`
	GeoLocation     *GeoLocation       `bson:"geo_location,omitempty" json:"geoLocation,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// CreateRequest carries the fields a department submits when opening a
// project.
type CreateRequest struct {
	Name            string       `json:"name"`
	Progress        int          `json:"progress"`
	StartDate       string       `json:"startDate"`
	EndDate         string       `json:"endDate"`
	BudgetAllocated float64      `json:"budgetAllocated"`
	ContactPerson   string       `json:"contactPerson"`
	Designation     string       `json:"designation"`
	ContactNumber   string       `json:"contactNumber"`
	Remarks         string       `json:"remarks,omitempty"`
	GeoLocation     *GeoLocation `json:"geoLocation,omitempty"`
}

// UpdateParams holds the optional fields of a progress report. Nil means
// "leave unchanged".
type UpdateParams struct {
	Progress        *int
	RemainingBudget *float64
	Remarks         *string
}
