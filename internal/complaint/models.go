package complaint

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Complaint statuses. Transitions between them are unconstrained: the
// workflow deliberately allows reopening a resolved complaint.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
)

// ValidStatus reports whether s is one of the three workflow states.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusResolved
}

// Document is a file attached at registration time.
type Document struct {
	Key string `bson:"key" json:"key"`
	URL string `bson:"url" json:"url"`
}

// SupportingDocument is a file attached by a department while acting on the
// complaint.
type SupportingDocument struct {
	Key        string `bson:"key" json:"key"`
	URL        string `bson:"url" json:"url"`
	UploadedBy string `bson:"uploaded_by" json:"uploadedBy"`
}

// RemarkEntry is one step of the append-only status audit trail.
type RemarkEntry struct {
	Department string    `bson:"department" json:"department"`
	Status     string    `bson:"status" json:"status"`
	Remark     string    `bson:"remark" json:"remark"`
	ActionDate time.Time `bson:"action_date" json:"actionDate"`
}

// Complaint is a citizen grievance tracked from registration through
// resolution. ComplaintID is the opaque public tracking id, independent of
// the Mongo record id, unique and immutable once assigned. Status always
// equals the status of the latest RemarksHistory entry, or StatusPending
// when the history is empty.
type Complaint struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"-"`
	ComplaintID         string               `bson:"complaint_id" json:"complaintId"`
	ComplainantName     string               `bson:"complainant_name" json:"complainantName"`
	GuardianName        string               `bson:"guardian_name" json:"guardianName"`
	Address             string               `bson:"address" json:"address"`
	Mobile              string               `bson:"mobile" json:"mobile"`
	ComplaintDetails    string               `bson:"complaint_details" json:"complaintDetails"`
	AssignedBy          string               `bson:"assigned_by" json:"assignedBy"`
	AssignedPlace       string               `bson:"assigned_place" json:"assignedPlace"`
	AssignedDate        string               `bson:"assigned_date" json:"assignedDate"`
	Department          string               `bson:"department" json:"department"`
	Documents           []Document           `bson:"documents" json:"documents"`
	Status              string               `bson:"status" json:"status"`
	RemarksHistory      []RemarkEntry        `bson:"remarks_history" json:"remarksHistory"`
	SupportingDocuments []SupportingDocument `bson:"supporting_documents" json:"supportingDocuments"`
	CreatedAt           time.Time            `bson:"created_at" json:"createdAt"`
}

// CreateRequest carries the registration fields submitted by a data-entry
// operator.
type CreateRequest struct {
	ComplainantName  string
	GuardianName     string
	Address          string
	Mobile           string
	ComplaintDetails string
	AssignedBy       string
	AssignedPlace    string
	AssignedDate     string
	Department       string
}
