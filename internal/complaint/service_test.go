package complaint

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	complaints []*Complaint
}

func (f *fakeStore) Insert(ctx context.Context, c *Complaint) error {
	for _, existing := range f.complaints {
		if existing.ComplaintID == c.ComplaintID {
			return ErrDuplicateID
		}
	}
	clone := *c
	f.complaints = append(f.complaints, &clone)
	return nil
}

func (f *fakeStore) FindByComplaintID(ctx context.Context, complaintID string) (*Complaint, error) {
	for _, c := range f.complaints {
		if c.ComplaintID == complaintID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindByDepartment(ctx context.Context, department string) ([]*Complaint, error) {
	var out []*Complaint
	for i := len(f.complaints) - 1; i >= 0; i-- {
		if f.complaints[i].Department == department {
			out = append(out, f.complaints[i])
		}
	}
	return out, nil
}

func (f *fakeStore) FindAll(ctx context.Context) ([]*Complaint, error) {
	out := make([]*Complaint, 0, len(f.complaints))
	for i := len(f.complaints) - 1; i >= 0; i-- {
		out = append(out, f.complaints[i])
	}
	return out, nil
}

func (f *fakeStore) AppendTransition(ctx context.Context, complaintID string, entry RemarkEntry, docs []SupportingDocument) error {
	for _, c := range f.complaints {
		if c.ComplaintID == complaintID {
			c.Status = entry.Status
			c.RemarksHistory = append(c.RemarksHistory, entry)
			c.SupportingDocuments = append(c.SupportingDocuments, docs...)
			return nil
		}
	}
	return ErrNotFound
}

type fakeUploader struct {
	keys    []string
	failAt  int // 1-based index of the upload that fails, 0 means never
	uploads int
}

func (f *fakeUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.uploads++
	if f.failAt > 0 && f.uploads >= f.failAt {
		return "", errors.New("upload failed")
	}
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

type fakeDeptChecker struct {
	departments map[string]bool
}

func (f *fakeDeptChecker) Exists(ctx context.Context, deptName string) (bool, error) {
	return f.departments[deptName], nil
}

func newTestService(depts ...string) (*ComplaintService, *fakeStore, *fakeUploader) {
	known := map[string]bool{}
	for _, d := range depts {
		known[d] = true
	}
	store := &fakeStore{}
	uploader := &fakeUploader{}
	svc := NewComplaintService(store, uploader, &fakeDeptChecker{departments: known}, zap.NewNop())
	return svc, store, uploader
}

func validRequest(department string) CreateRequest {
	return CreateRequest{
		ComplainantName:  "Ram",
		GuardianName:     "Shyam",
		Address:          "Tehsil Road, Sadar",
		Mobile:           "9876543210",
		ComplaintDetails: "Water supply disrupted for a week",
		AssignedBy:       "Operator 1",
		AssignedPlace:    "Sadar Tehsil",
		AssignedDate:     "2026-08-01",
		Department:       department,
	}
}

func TestRegisterReturnsTrackableComplaint(t *testing.T) {
	svc, _, _ := newTestService("राजस्व विभाग")

	id, err := svc.Register(context.Background(), validRequest("राजस्व विभाग"), nil)
	require.NoError(t, err)
	assert.Len(t, id, 8)

	got, err := svc.GetByPublicID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Empty(t, got.RemarksHistory)
	assert.Empty(t, got.SupportingDocuments)
	assert.Equal(t, "Ram", got.ComplainantName)
	assert.Equal(t, "राजस्व विभाग", got.Department)
}

func TestRegisterGeneratesUniqueIDs(t *testing.T) {
	svc, _, _ := newTestService("जल विभाग")

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := svc.Register(context.Background(), validRequest("जल विभाग"), nil)
		require.NoError(t, err)
		require.Len(t, id, 8)
		require.False(t, seen[id], "complaint id %q assigned twice", id)
		seen[id] = true
	}
}

func TestRegisterRequiredFields(t *testing.T) {
	svc, _, _ := newTestService("जल विभाग")

	req := validRequest("जल विभाग")
	req.ComplainantName = "  "
	_, err := svc.Register(context.Background(), req, nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "complainantName", validationErr.Field)
}

func TestRegisterRejectsUnknownDepartment(t *testing.T) {
	svc, _, _ := newTestService("जल विभाग")

	_, err := svc.Register(context.Background(), validRequest("लोक निर्माण विभाग"), nil)
	assert.ErrorIs(t, err, ErrUnknownDepartment)
}

func TestRegisterUploadsDocumentsUnderComplaintPrefix(t *testing.T) {
	svc, store, uploader := newTestService("जल विभाग")

	files := []Upload{
		{Filename: "application.pdf", ContentType: "application/pdf", Data: []byte("pdf")},
		{Filename: "photo.jpg", ContentType: "image/jpeg", Data: []byte("jpg")},
	}
	id, err := svc.Register(context.Background(), validRequest("जल विभाग"), files)
	require.NoError(t, err)

	require.Len(t, uploader.keys, 2)
	for _, key := range uploader.keys {
		assert.True(t, strings.HasPrefix(key, "complaints/"), "key %q", key)
	}
	assert.True(t, strings.HasSuffix(uploader.keys[0], "application.pdf"))

	got, _ := store.FindByComplaintID(context.Background(), id)
	require.Len(t, got.Documents, 2)
	assert.Equal(t, "https://cdn.test/"+got.Documents[0].Key, got.Documents[0].URL)
}

func TestRegisterAbortsWhenUploadFails(t *testing.T) {
	svc, store, uploader := newTestService("जल विभाग")
	uploader.failAt = 2

	files := []Upload{
		{Filename: "a.pdf", Data: []byte("a")},
		{Filename: "b.pdf", Data: []byte("b")},
	}
	_, err := svc.Register(context.Background(), validRequest("जल विभाग"), files)
	require.Error(t, err)
	assert.Empty(t, store.complaints)
	// The first blob is already in object storage, orphaned.
	assert.Len(t, uploader.keys, 1)
}

func TestListFiltersByDepartment(t *testing.T) {
	svc, _, _ := newTestService("जल विभाग", "राजस्व विभाग")

	_, err := svc.Register(context.Background(), validRequest("जल विभाग"), nil)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), validRequest("राजस्व विभाग"), nil)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), validRequest("जल विभाग"), nil)
	require.NoError(t, err)

	mine, err := svc.List(context.Background(), "जल विभाग", false)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, c := range mine {
		assert.Equal(t, "जल विभाग", c.Department)
	}

	all, err := svc.List(context.Background(), "", true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAppendStatusTransitionOrdering(t *testing.T) {
	svc, _, _ := newTestService("जल विभाग")

	id, err := svc.Register(context.Background(), validRequest("जल विभाग"), nil)
	require.NoError(t, err)

	require.NoError(t, svc.AppendStatusTransition(context.Background(), id, StatusInProgress, "remark A", "जल विभाग", nil))
	require.NoError(t, svc.AppendStatusTransition(context.Background(), id, StatusResolved, "remark B", "जल विभाग", nil))

	got, err := svc.GetByPublicID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, got.Status)
	require.Len(t, got.RemarksHistory, 2)
	assert.Equal(t, "remark A", got.RemarksHistory[0].Remark)
	assert.Equal(t, StatusInProgress, got.RemarksHistory[0].Status)
	assert.Equal(t, "remark B", got.RemarksHistory[1].Remark)
	assert.Equal(t, StatusResolved, got.RemarksHistory[1].Status)
}

func TestAppendStatusTransitionAllowsReopening(t *testing.T) {
	svc, _, _ := newTestService("जल विभाग")

	id, err := svc.Register(context.Background(), validRequest("जल विभाग"), nil)
	require.NoError(t, err)

	require.NoError(t, svc.AppendStatusTransition(context.Background(), id, StatusResolved, "done", "जल विभाग", nil))
	require.NoError(t, svc.AppendStatusTransition(context.Background(), id, StatusPending, "reopened", "जल विभाग", nil))

	got, _ := svc.GetByPublicID(context.Background(), id)
	assert.Equal(t, StatusPending, got.Status)
	assert.Len(t, got.RemarksHistory, 2)
}

func TestAppendStatusTransitionRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService("जल विभाग")

	id, err := svc.Register(context.Background(), validRequest("जल विभाग"), nil)
	require.NoError(t, err)

	err = svc.AppendStatusTransition(context.Background(), id, "closed", "remark", "जल विभाग", nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAppendStatusTransitionRejectsUnregisteredActingDepartment(t *testing.T) {
	svc, _, uploader := newTestService("जल विभाग")

	id, err := svc.Register(context.Background(), validRequest("जल विभाग"), nil)
	require.NoError(t, err)

	files := []Upload{{Filename: "proof.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}}
	err = svc.AppendStatusTransition(context.Background(), id, StatusResolved, "remark", "लोक निर्माण विभाग", files)
	assert.ErrorIs(t, err, ErrUnknownDepartment)

	// Nothing was uploaded and no history entry was written.
	assert.Empty(t, uploader.keys)
	got, _ := svc.GetByPublicID(context.Background(), id)
	assert.Equal(t, StatusPending, got.Status)
	assert.Empty(t, got.RemarksHistory)
}

func TestAppendStatusTransitionNotFound(t *testing.T) {
	svc, _, _ := newTestService("जल विभाग")

	err := svc.AppendStatusTransition(context.Background(), "NOPE1234", StatusResolved, "remark", "जल विभाग", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendStatusTransitionTagsSupportingDocuments(t *testing.T) {
	svc, _, uploader := newTestService("जल विभाग")

	id, err := svc.Register(context.Background(), validRequest("जल विभाग"), nil)
	require.NoError(t, err)

	files := []Upload{{Filename: "proof.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}}
	require.NoError(t, svc.AppendStatusTransition(context.Background(), id, StatusInProgress, "site visited", "जल विभाग", files))

	require.Len(t, uploader.keys, 1)
	assert.True(t, strings.HasPrefix(uploader.keys[0], "complaint-supporting/"))

	got, _ := svc.GetByPublicID(context.Background(), id)
	require.Len(t, got.SupportingDocuments, 1)
	assert.Equal(t, "जल विभाग", got.SupportingDocuments[0].UploadedBy)
}

func TestGetByPublicIDNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetByPublicID(context.Background(), "MISSING1")
	assert.ErrorIs(t, err, ErrNotFound)
}
