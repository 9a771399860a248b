package reminder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"JanSamadhan/internal/complaint"

	"go.uber.org/zap"
)

// Store is the persistence surface the reminder service needs.
type Store interface {
	FindStalePending(ctx context.Context, cutoff time.Time) ([]*complaint.Complaint, error)
	LastSent(ctx context.Context, complaintIDs []string) (map[string]time.Time, error)
	RecordSent(ctx context.Context, complaintID string, at time.Time) error
	DepartmentEmail(ctx context.Context, deptName string) (string, error)
}

type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// ReminderService mails departments about complaints that have sat in the
// pending state past the grace period. One mail per department per run,
// listing all of its overdue complaints.
type ReminderService struct {
	repo        Store
	email       EmailSender
	gracePeriod time.Duration
	resendAfter time.Duration
	logger      *zap.Logger
}

func NewReminderService(repo Store, email EmailSender, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		repo:        repo,
		email:       email,
		gracePeriod: 3 * 24 * time.Hour,
		resendAfter: 24 * time.Hour,
		logger:      logger,
	}
}

// SendPendingReminders runs one reminder pass. Failures are logged and
// skipped; the next tick retries naturally.
func (s *ReminderService) SendPendingReminders(ctx context.Context) {
	now := time.Now()
	stale, err := s.repo.FindStalePending(ctx, now.Add(-s.gracePeriod))
	if err != nil {
		s.logger.Error("Failed to fetch stale pending complaints", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	ids := make([]string, len(stale))
	for i, c := range stale {
		ids[i] = c.ComplaintID
	}
	lastSent, err := s.repo.LastSent(ctx, ids)
	if err != nil {
		s.logger.Error("Failed to fetch reminder history", zap.Error(err))
		return
	}

	byDept := map[string][]*complaint.Complaint{}
	for _, c := range stale {
		if sent, ok := lastSent[c.ComplaintID]; ok && now.Sub(sent) < s.resendAfter {
			continue
		}
		byDept[c.Department] = append(byDept[c.Department], c)
	}

	for dept, complaints := range byDept {
		email, err := s.repo.DepartmentEmail(ctx, dept)
		if err != nil {
			s.logger.Error("Failed to look up department email", zap.String("department", dept), zap.Error(err))
			continue
		}
		if email == "" {
			s.logger.Warn("Complaint assigned to a department with no registration", zap.String("department", dept))
			continue
		}

		if err := s.email.SendEmail(email, "Pending complaints reminder", reminderBody(complaints)); err != nil {
			s.logger.Error("Failed to send reminder", zap.String("department", dept), zap.Error(err))
			continue
		}
		for _, c := range complaints {
			if err := s.repo.RecordSent(ctx, c.ComplaintID, now); err != nil {
				s.logger.Error("Failed to record reminder", zap.String("complaintId", c.ComplaintID), zap.Error(err))
			}
		}
		s.logger.Info("Reminder sent",
			zap.String("department", dept),
			zap.Int("complaints", len(complaints)))
	}
}

func reminderBody(complaints []*complaint.Complaint) string {
	var b strings.Builder
	b.WriteString("The following complaints are still pending:<br>")
	for _, c := range complaints {
		fmt.Fprintf(&b, "%s — registered %s<br>", c.ComplaintID, c.CreatedAt.Format("02 Jan 2006"))
	}
	return b.String()
}
