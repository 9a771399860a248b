package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"JanSamadhan/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const photoKeyPrefix = "project-photos"

var (
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
	ErrNotOwner        = errors.New("project belongs to another department")
)

// ValidationError reports a missing required project field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// Store is the persistence surface the project service needs.
type Store interface {
	Insert(ctx context.Context, project *Project) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Project, error)
	FindByDepartment(ctx context.Context, department string) ([]*Project, error)
	FindAll(ctx context.Context) ([]*Project, error)
	ApplyProgress(ctx context.Context, id primitive.ObjectID, params UpdateParams, photos []Photo) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Uploader stores a blob and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Upload is one photo file received in a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ProjectService struct {
	repo   Store
	store  Uploader
	logger *zap.Logger
}

func NewProjectService(repo Store, store Uploader, logger *zap.Logger) *ProjectService {
	return &ProjectService{repo: repo, store: store, logger: logger}
}

// Create opens a new project for a department. The remaining budget starts
// equal to the allocated budget and is reported independently afterwards.
func (s *ProjectService) Create(ctx context.Context, department string, req CreateRequest) (*Project, error) {
	if err := validateCreate(department, req); err != nil {
		return nil, err
	}
	if req.Progress < 0 || req.Progress > 100 {
		return nil, ErrInvalidProgress
	}

	now := time.Now()
	project := &Project{
		Department:      department,
		Name:            req.Name,
		Progress:        req.Progress,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		BudgetAllocated: req.BudgetAllocated,
		RemainingBudget: req.BudgetAllocated,
		ContactPerson:   req.ContactPerson,
		Designation:     req.Designation,
		ContactNumber:   req.ContactNumber,
		Remarks:         req.Remarks,
		Photos:          []Photo{},
		GeoLocation:     req.GeoLocation,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	id, err := s.repo.Insert(ctx, project)
	if err != nil {
		return nil, err
	}
	project.ID = id
	s.logger.Info("Project created",
		zap.String("name", project.Name),
		zap.String("department", department))
	return project, nil
}

func (s *ProjectService) ListByDepartment(ctx context.Context, department string) ([]*Project, error) {
	return s.repo.FindByDepartment(ctx, department)
}

func (s *ProjectService) ListAll(ctx context.Context) ([]*Project, error) {
	return s.repo.FindAll(ctx)
}

func (s *ProjectService) Get(ctx context.Context, idHex string) (*Project, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, ErrNotFound
	}
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return project, nil
}

// UpdateProgress applies a daily progress report: only the supplied fields
// change, photo files are uploaded and appended to the photo list.
func (s *ProjectService) UpdateProgress(ctx context.Context, idHex, actingDept string, params UpdateParams, files []Upload) error {
	if params.Progress != nil && (*params.Progress < 0 || *params.Progress > 100) {
		return ErrInvalidProgress
	}

	project, err := s.Get(ctx, idHex)
	if err != nil {
		return err
	}
	if actingDept != "" && project.Department != actingDept {
		return ErrNotOwner
	}

	photos := make([]Photo, 0, len(files))
	for _, f := range files {
		key := config.GenerateKey(photoKeyPrefix, f.Filename)
		url, err := s.store.Upload(ctx, key, f.Data, f.ContentType)
		if err != nil {
			s.logger.Warn("Photo upload failed mid-request, earlier blobs are orphaned",
				zap.String("key", key),
				zap.Error(err))
			return fmt.Errorf("upload %s: %w", f.Filename, err)
		}
		photos = append(photos, Photo{URL: url, Key: key, UploadedAt: time.Now()})
	}

	return s.repo.ApplyProgress(ctx, project.ID, params, photos)
}

// Delete removes the project record. Photo blobs stay in object storage.
func (s *ProjectService) Delete(ctx context.Context, idHex, actingDept string) error {
	project, err := s.Get(ctx, idHex)
	if err != nil {
		return err
	}
	if actingDept != "" && project.Department != actingDept {
		return ErrNotOwner
	}
	if err := s.repo.Delete(ctx, project.ID); err != nil {
		return err
	}
	if len(project.Photos) > 0 {
		s.logger.Warn("Project deleted, photo blobs remain in object storage",
			zap.String("project", project.Name),
			zap.Int("photos", len(project.Photos)))
	}
	return nil
}

func validateCreate(department string, req CreateRequest) error {
	required := map[string]string{
		"department":    department,
		"name":          req.Name,
		"startDate":     req.StartDate,
		"endDate":       req.EndDate,
		"contactPerson": req.ContactPerson,
		"designation":   req.Designation,
		"contactNumber": req.ContactNumber,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field}
		}
	}
	if req.BudgetAllocated <= 0 {
		return &ValidationError{Field: "budgetAllocated"}
	}
	return nil
}
