package complaint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"JanSamadhan/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// Object key namespaces, one per document collection.
	registrationKeyPrefix = "complaints"
	supportingKeyPrefix   = "complaint-supporting"

	complaintIDLength  = 8
	idGenerateAttempts = 5
)

var (
	ErrInvalidStatus     = errors.New("status must be pending, in-progress or resolved")
	ErrUnknownDepartment = errors.New("department is not registered")
)

// ValidationError reports a missing required registration field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// Store is the persistence surface the complaint service needs.
type Store interface {
	Insert(ctx context.Context, complaint *Complaint) error
	FindByComplaintID(ctx context.Context, complaintID string) (*Complaint, error)
	FindByDepartment(ctx context.Context, department string) ([]*Complaint, error)
	FindAll(ctx context.Context) ([]*Complaint, error)
	AppendTransition(ctx context.Context, complaintID string, entry RemarkEntry, docs []SupportingDocument) error
}

// Uploader stores a blob and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// DepartmentChecker validates that a department reference points at a
// registered department.
type DepartmentChecker interface {
	Exists(ctx context.Context, deptName string) (bool, error)
}

// Upload is one file received in a multipart request, already read into
// memory by the handler.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ComplaintService struct {
	repo        Store
	store       Uploader
	departments DepartmentChecker
	logger      *zap.Logger
}

func NewComplaintService(repo Store, store Uploader, departments DepartmentChecker, logger *zap.Logger) *ComplaintService {
	return &ComplaintService{repo: repo, store: store, departments: departments, logger: logger}
}

// Register creates a complaint with its attached documents and returns the
// generated public complaint id. Files are uploaded one by one; a failure
// partway through aborts the request and leaves the already uploaded blobs
// orphaned in object storage (logged, not rolled back).
func (s *ComplaintService) Register(ctx context.Context, req CreateRequest, files []Upload) (string, error) {
	if err := validateCreate(req); err != nil {
		return "", err
	}
	exists, err := s.departments.Exists(ctx, req.Department)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrUnknownDepartment
	}

	documents, err := s.uploadDocuments(ctx, registrationKeyPrefix, files)
	if err != nil {
		return "", err
	}

	complaint := &Complaint{
		ComplainantName:     req.ComplainantName,
		GuardianName:        req.GuardianName,
		Address:             req.Address,
		Mobile:              req.Mobile,
		ComplaintDetails:    req.ComplaintDetails,
		AssignedBy:          req.AssignedBy,
		AssignedPlace:       req.AssignedPlace,
		AssignedDate:        req.AssignedDate,
		Department:          req.Department,
		Documents:           documents,
		Status:              StatusPending,
		RemarksHistory:      []RemarkEntry{},
		SupportingDocuments: []SupportingDocument{},
		CreatedAt:           time.Now(),
	}

	// The id is generated here, not by the database; on the rare collision
	// the unique index rejects the insert and a fresh id is tried.
	for attempt := 0; attempt < idGenerateAttempts; attempt++ {
		complaint.ComplaintID = newComplaintID()
		err = s.repo.Insert(ctx, complaint)
		if err == nil {
			s.logger.Info("Complaint registered",
				zap.String("complaintId", complaint.ComplaintID),
				zap.String("department", complaint.Department))
			return complaint.ComplaintID, nil
		}
		if !errors.Is(err, ErrDuplicateID) {
			return "", err
		}
	}
	return "", fmt.Errorf("could not generate a unique complaint id: %w", err)
}

// List returns every complaint when all is true, otherwise only those
// assigned to department. Most recent first.
func (s *ComplaintService) List(ctx context.Context, department string, all bool) ([]*Complaint, error) {
	if all {
		return s.repo.FindAll(ctx)
	}
	return s.repo.FindByDepartment(ctx, department)
}

// GetByPublicID looks a complaint up by its public tracking id. This is the
// unauthenticated public-tracking entry point; nothing is redacted.
func (s *ComplaintService) GetByPublicID(ctx context.Context, complaintID string) (*Complaint, error) {
	complaint, err := s.repo.FindByComplaintID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, ErrNotFound
	}
	return complaint, nil
}

// AppendStatusTransition records a status change with a remark and optional
// supporting documents. This is the sole mutator of a complaint's status and
// history.
func (s *ComplaintService) AppendStatusTransition(ctx context.Context, complaintID, status, remark, actingDept string, files []Upload) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	// History entries name the acting department; an unregistered name must
	// never enter the ledger, whoever supplied it.
	registered, err := s.departments.Exists(ctx, actingDept)
	if err != nil {
		return err
	}
	if !registered {
		return ErrUnknownDepartment
	}
	existing, err := s.repo.FindByComplaintID(ctx, complaintID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}

	uploaded, err := s.uploadDocuments(ctx, supportingKeyPrefix, files)
	if err != nil {
		return err
	}
	docs := make([]SupportingDocument, len(uploaded))
	for i, d := range uploaded {
		docs[i] = SupportingDocument{Key: d.Key, URL: d.URL, UploadedBy: actingDept}
	}

	entry := RemarkEntry{
		Department: actingDept,
		Status:     status,
		Remark:     remark,
		ActionDate: time.Now(),
	}
	if err := s.repo.AppendTransition(ctx, complaintID, entry, docs); err != nil {
		return err
	}
	s.logger.Info("Complaint status updated",
		zap.String("complaintId", complaintID),
		zap.String("status", status),
		zap.String("department", actingDept))
	return nil
}

func (s *ComplaintService) uploadDocuments(ctx context.Context, prefix string, files []Upload) ([]Document, error) {
	documents := make([]Document, 0, len(files))
	for _, f := range files {
		key := config.GenerateKey(prefix, f.Filename)
		url, err := s.store.Upload(ctx, key, f.Data, f.ContentType)
		if err != nil {
			s.logger.Warn("Upload failed mid-request, earlier blobs are orphaned",
				zap.String("key", key),
				zap.Int("uploadedSoFar", len(documents)),
				zap.Error(err))
			return nil, fmt.Errorf("upload %s: %w", f.Filename, err)
		}
		documents = append(documents, Document{Key: key, URL: url})
	}
	return documents, nil
}

func validateCreate(req CreateRequest) error {
	required := map[string]string{
		"complainantName":  req.ComplainantName,
		"address":          req.Address,
		"mobile":           req.Mobile,
		"complaintDetails": req.ComplaintDetails,
		"department":       req.Department,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field}
		}
	}
	return nil
}

// newComplaintID returns a short opaque id for public tracking.
func newComplaintID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:complaintIDLength])
}
