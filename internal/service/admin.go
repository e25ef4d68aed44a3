package service

import (
	"context"
	"time"

	"github.com/prepost/prepost-go/internal/model"
)

const recentLimit = 10

// AdminService assembles the read-only operator views. Authorization is the
// caller's concern: every route reaching this service sits behind the
// admin allow-list middleware.
type AdminService struct {
	stats       StatsStore
	users       UserStore
	messages    MessageStore
	reports     ReportStore
	reminderAge time.Duration
}

func NewAdminService(stats StatsStore, users UserStore, messages MessageStore,
	reports ReportStore, reminderAge time.Duration) *AdminService {
	return &AdminService{
		stats:       stats,
		users:       users,
		messages:    messages,
		reports:     reports,
		reminderAge: reminderAge,
	}
}

// Stats returns the current aggregation snapshot. "Today" starts at
// server-local midnight; the reminder-eligible gauge uses the same cutoff
// as the sweep itself.
func (s *AdminService) Stats(ctx context.Context) (model.Stats, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.stats.Collect(ctx, today, now.Add(-s.reminderAge))
}

// Overview returns the admin console landing payload: stats plus recent
// users, recent messages and the pending report queue.
func (s *AdminService) Overview(ctx context.Context) (model.AdminOverview, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return model.AdminOverview{}, err
	}
	users, err := s.users.List(ctx, recentLimit)
	if err != nil {
		return model.AdminOverview{}, err
	}
	messages, err := s.messages.ListRecent(ctx, recentLimit)
	if err != nil {
		return model.AdminOverview{}, err
	}
	reports, err := s.reports.ListPending(ctx)
	if err != nil {
		return model.AdminOverview{}, err
	}
	return model.AdminOverview{
		Stats:          stats,
		RecentUsers:    users,
		RecentMessages: messages,
		PendingReports: reports,
	}, nil
}

// Users returns the full user listing for the admin console.
func (s *AdminService) Users(ctx context.Context) ([]model.AdminUser, error) {
	return s.users.List(ctx, 0)
}
