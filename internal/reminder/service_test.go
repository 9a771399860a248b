package reminder

import (
	"context"
	"testing"
	"time"

	"JanSamadhan/internal/complaint"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	stale    []*complaint.Complaint
	lastSent map[string]time.Time
	recorded map[string]time.Time
	emails   map[string]string // department → email
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lastSent: map[string]time.Time{},
		recorded: map[string]time.Time{},
		emails:   map[string]string{},
	}
}

func (f *fakeStore) FindStalePending(ctx context.Context, cutoff time.Time) ([]*complaint.Complaint, error) {
	var out []*complaint.Complaint
	for _, c := range f.stale {
		if !c.CreatedAt.After(cutoff) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) LastSent(ctx context.Context, complaintIDs []string) (map[string]time.Time, error) {
	return f.lastSent, nil
}

func (f *fakeStore) RecordSent(ctx context.Context, complaintID string, at time.Time) error {
	f.recorded[complaintID] = at
	return nil
}

func (f *fakeStore) DepartmentEmail(ctx context.Context, deptName string) (string, error) {
	return f.emails[deptName], nil
}

type fakeEmailSender struct {
	sent map[string]string // recipient → body
}

func (f *fakeEmailSender) SendEmail(to, subject, body string) error {
	if f.sent == nil {
		f.sent = map[string]string{}
	}
	f.sent[to] = body
	return nil
}

func staleComplaint(id, dept string, age time.Duration) *complaint.Complaint {
	return &complaint.Complaint{
		ComplaintID: id,
		Department:  dept,
		Status:      complaint.StatusPending,
		CreatedAt:   time.Now().Add(-age),
	}
}

func TestSendPendingRemindersGroupsByDepartment(t *testing.T) {
	store := newFakeStore()
	store.emails["जल विभाग"] = "jal@district.gov.in"
	store.emails["राजस्व विभाग"] = "rajasva@district.gov.in"
	store.stale = []*complaint.Complaint{
		staleComplaint("AAAA1111", "जल विभाग", 5*24*time.Hour),
		staleComplaint("BBBB2222", "जल विभाग", 4*24*time.Hour),
		staleComplaint("CCCC3333", "राजस्व विभाग", 6*24*time.Hour),
	}
	sender := &fakeEmailSender{}
	svc := NewReminderService(store, sender, zap.NewNop())

	svc.SendPendingReminders(context.Background())

	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent["jal@district.gov.in"], "AAAA1111")
	assert.Contains(t, sender.sent["jal@district.gov.in"], "BBBB2222")
	assert.Contains(t, sender.sent["rajasva@district.gov.in"], "CCCC3333")
	assert.Len(t, store.recorded, 3)
}

func TestSendPendingRemindersSkipsRecentlyReminded(t *testing.T) {
	store := newFakeStore()
	store.emails["जल विभाग"] = "jal@district.gov.in"
	store.stale = []*complaint.Complaint{
		staleComplaint("AAAA1111", "जल विभाग", 5*24*time.Hour),
		staleComplaint("BBBB2222", "जल विभाग", 5*24*time.Hour),
	}
	store.lastSent["AAAA1111"] = time.Now().Add(-time.Hour)
	sender := &fakeEmailSender{}
	svc := NewReminderService(store, sender, zap.NewNop())

	svc.SendPendingReminders(context.Background())

	require.Len(t, sender.sent, 1)
	body := sender.sent["jal@district.gov.in"]
	assert.NotContains(t, body, "AAAA1111")
	assert.Contains(t, body, "BBBB2222")
}

func TestSendPendingRemindersSkipsUnregisteredDepartment(t *testing.T) {
	store := newFakeStore()
	store.stale = []*complaint.Complaint{
		staleComplaint("AAAA1111", "अज्ञात विभाग", 5*24*time.Hour),
	}
	sender := &fakeEmailSender{}
	svc := NewReminderService(store, sender, zap.NewNop())

	svc.SendPendingReminders(context.Background())

	assert.Empty(t, sender.sent)
	assert.Empty(t, store.recorded)
}

func TestSendPendingRemindersNoStaleComplaints(t *testing.T) {
	store := newFakeStore()
	sender := &fakeEmailSender{}
	svc := NewReminderService(store, sender, zap.NewNop())

	svc.SendPendingReminders(context.Background())

	assert.Empty(t, sender.sent)
}
