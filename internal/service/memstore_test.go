package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prepost/prepost-go/internal/email"
	"github.com/prepost/prepost-go/internal/model"
	"github.com/prepost/prepost-go/internal/repository"
)

// memStore is an in-memory implementation of every store interface, with the
// same conditional-update semantics as the MySQL repositories: mark-read and
// token consumption are single-winner, create+award is atomic, and duplicate
// keys surface the repository sentinel errors.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*model.User
	tokens   map[string]*model.LoginToken // keyed by token hash
	messages map[string]*model.Message
	reports  map[string]*model.Report
	seq      int
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*model.User),
		tokens:   make(map[string]*model.LoginToken),
		messages: make(map[string]*model.Message),
		reports:  make(map[string]*model.Report),
	}
}

func (s *memStore) nextID() string {
	s.seq++
	return fmt.Sprintf("id-%d", s.seq)
}

// addUser seeds a user directly, bypassing the login flow.
func (s *memStore) addUser(email string, credits int) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{
		ID:        s.nextID(),
		Email:     email,
		Credits:   credits,
		CreatedAt: time.Now(),
	}
	s.users[u.ID] = u
	return u
}

// UserStore

func (s *memStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memStore) ResolveOrCreate(ctx context.Context, addr string) (*model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == addr {
			cp := *u
			return &cp, false, nil
		}
	}
	u := &model.User{
		ID:        s.nextID(),
		Email:     addr,
		CreatedAt: time.Now(),
	}
	s.users[u.ID] = u
	for _, m := range s.messages {
		if m.RecipientID == nil && m.RecipientEmail == addr {
			id := u.ID
			m.RecipientID = &id
		}
	}
	cp := *u
	return &cp, true, nil
}

func (s *memStore) SetSuspended(ctx context.Context, id string, suspended bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Suspended = suspended
	return nil
}

func (s *memStore) List(ctx context.Context, limit int) ([]model.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := []model.AdminUser{}
	for _, u := range s.users {
		au := model.AdminUser{
			ID:        u.ID,
			Email:     u.Email,
			Credits:   u.Credits,
			Suspended: u.Suspended,
			CreatedAt: u.CreatedAt,
		}
		for _, m := range s.messages {
			if m.SenderID == u.ID {
				au.SentCount++
			}
			if m.RecipientID != nil && *m.RecipientID == u.ID {
				au.ReceivedCount++
			}
		}
		users = append(users, au)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// TokenStore

func (s *memStore) Create(ctx context.Context, t *model.LoginToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID()
	t.CreatedAt = time.Now()
	cp := *t
	s.tokens[t.TokenHash] = &cp
	return nil
}

func (s *memStore) DeleteByHash(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenHash)
	return nil
}

func (s *memStore) HasActive(ctx context.Context, email string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.Email == email && !t.Used && !t.Expired(now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Consume(ctx context.Context, tokenHash string, now time.Time) (*model.LoginToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tokenHash]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	if t.Used {
		return nil, repository.ErrTokenUsed
	}
	if t.Expired(now) {
		return nil, repository.ErrTokenExpired
	}
	t.Used = true
	cp := *t
	return &cp, nil
}

// MessageStore

func (s *memStore) CreateMessage(ctx context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.messages {
		if existing.SenderID == m.SenderID && existing.RecipientEmail == m.RecipientEmail {
			return repository.ErrDuplicateMessage
		}
	}
	m.ID = s.nextID()
	m.CreatedAt = time.Now()
	cp := *m
	s.messages[m.ID] = &cp
	if sender, ok := s.users[m.SenderID]; ok {
		sender.Credits++
	}
	return nil
}

func (s *memStore) GetMessageByID(ctx context.Context, id string) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, repository.ErrMessageNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *memStore) MarkRead(ctx context.Context, messageID, readerID string) (*model.Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok {
		return nil, false, repository.ErrMessageNotFound
	}
	spent := false
	if !m.IsRead {
		reader, ok := s.users[readerID]
		if !ok || reader.Credits < 1 {
			return nil, false, repository.ErrInsufficientCredits
		}
		reader.Credits--
		now := time.Now()
		m.IsRead = true
		m.ReadAt = &now
		spent = true
	}
	cp := *m
	return &cp, spent, nil
}

func (s *memStore) SoftDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return repository.ErrMessageNotFound
	}
	if !m.IsDeleted {
		now := time.Now()
		m.IsDeleted = true
		m.DeletedAt = &now
	}
	return nil
}

func (s *memStore) ListInbox(ctx context.Context, recipientID string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Message{}
	for _, m := range s.messages {
		if m.RecipientID != nil && *m.RecipientID == recipientID && !m.IsDeleted {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) ListSent(ctx context.Context, senderID string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Message{}
	for _, m := range s.messages {
		if m.SenderID == senderID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) ListRecent(ctx context.Context, limit int) ([]model.RecentMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.RecentMessage{}
	for _, m := range s.messages {
		rm := model.RecentMessage{
			ID:             m.ID,
			RecipientEmail: m.RecipientEmail,
			RecipientName:  m.RecipientName,
			IsRead:         m.IsRead,
			CreatedAt:      m.CreatedAt,
		}
		if sender, ok := s.users[m.SenderID]; ok {
			rm.SenderEmail = sender.Email
		}
		out = append(out, rm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ReminderCandidates(ctx context.Context, before time.Time) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Message{}
	for _, m := range s.messages {
		if !m.IsRead && !m.IsDeleted && m.ReminderSentAt == nil && m.CreatedAt.Before(before) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *memStore) MarkReminderSent(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return false, nil
	}
	if m.IsRead || m.IsDeleted || m.ReminderSentAt != nil {
		return false, nil
	}
	now := time.Now()
	m.ReminderSentAt = &now
	return true, nil
}

// ReportStore

func (s *memStore) CreateReport(ctx context.Context, r *model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reports {
		if existing.MessageID == r.MessageID && existing.ReporterID == r.ReporterID {
			return repository.ErrDuplicateReport
		}
	}
	r.ID = s.nextID()
	r.Status = model.ReportStatusPending
	r.CreatedAt = time.Now()
	cp := *r
	s.reports[r.ID] = &cp
	return nil
}

func (s *memStore) Dismiss(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return repository.ErrReportNotFound
	}
	if r.Status != model.ReportStatusPending {
		return repository.ErrReportReviewed
	}
	now := time.Now()
	r.Status = model.ReportStatusDismissed
	r.ReviewedAt = &now
	return nil
}

func (s *memStore) ReviewAndSuspend(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return repository.ErrReportNotFound
	}
	if r.Status != model.ReportStatusPending {
		return repository.ErrReportReviewed
	}
	m, ok := s.messages[r.MessageID]
	if !ok {
		return repository.ErrMessageNotFound
	}
	sender, ok := s.users[m.SenderID]
	if !ok {
		return repository.ErrUserNotFound
	}
	sender.Suspended = true
	now := time.Now()
	r.Status = model.ReportStatusReviewed
	r.ReviewedAt = &now
	return nil
}

func (s *memStore) ListPending(ctx context.Context) ([]model.PendingReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.PendingReport{}
	for _, r := range s.reports {
		if r.Status != model.ReportStatusPending {
			continue
		}
		pr := model.PendingReport{
			ID:        r.ID,
			Reason:    r.Reason,
			CreatedAt: r.CreatedAt,
			MessageID: r.MessageID,
		}
		if m, ok := s.messages[r.MessageID]; ok {
			pr.MessageContent = m.Content
			pr.SenderID = m.SenderID
			if sender, ok := s.users[m.SenderID]; ok {
				pr.SenderEmail = sender.Email
				pr.SenderSuspended = sender.Suspended
			}
		}
		if reporter, ok := s.users[r.ReporterID]; ok {
			pr.ReporterEmail = reporter.Email
		}
		out = append(out, pr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// StatsStore

func (s *memStore) Collect(ctx context.Context, today, reminderBefore time.Time) (model.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st model.Stats
	for _, u := range s.users {
		st.Users++
		if u.Suspended {
			st.SuspendedUsers++
		}
		if !u.CreatedAt.Before(today) {
			st.UsersToday++
		}
		st.CreditsOutstanding += u.Credits
	}
	for _, m := range s.messages {
		st.Messages++
		if !m.IsRead {
			st.UnreadMessages++
		}
		if !m.CreatedAt.Before(today) {
			st.MessagesToday++
		}
		if m.IsDeleted {
			st.DeletedMessages++
		}
		if m.ReminderSentAt != nil {
			st.RemindersSent++
		}
		if !m.IsRead && !m.IsDeleted && m.ReminderSentAt == nil && m.CreatedAt.Before(reminderBefore) {
			st.ReminderEligible++
		}
	}
	if st.Messages > 0 {
		st.ReadRate = float64(st.Messages-st.UnreadMessages) / float64(st.Messages)
	}
	for _, r := range s.reports {
		if r.Status == model.ReportStatusPending {
			st.PendingReports++
		}
	}
	return st, nil
}

// messageStoreAdapter and reportStoreAdapter disambiguate the Create and
// GetByID method names, which collide across the store interfaces on a
// single struct.
type messageStoreAdapter struct{ *memStore }

func (a messageStoreAdapter) Create(ctx context.Context, m *model.Message) error {
	return a.CreateMessage(ctx, m)
}

func (a messageStoreAdapter) GetByID(ctx context.Context, id string) (*model.Message, error) {
	return a.GetMessageByID(ctx, id)
}

type reportStoreAdapter struct{ *memStore }

func (a reportStoreAdapter) Create(ctx context.Context, r *model.Report) error {
	return a.CreateReport(ctx, r)
}

// fakeMailer records dispatches and can be told to fail per template kind.
// onSend, when set, runs after a successful dispatch; tests use it to
// interleave state changes between a send and whatever follows it.
type fakeMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	fail   map[email.Kind]error
	onSend func(sentMail)
}

type sentMail struct {
	To     string
	Kind   email.Kind
	Params email.Params
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{fail: make(map[email.Kind]error)}
}

func (f *fakeMailer) Send(ctx context.Context, to string, kind email.Kind, p email.Params) (email.Result, error) {
	f.mu.Lock()
	if err := f.fail[kind]; err != nil {
		f.mu.Unlock()
		return email.Result{}, err
	}
	m := sentMail{To: to, Kind: kind, Params: p}
	f.sent = append(f.sent, m)
	hook := f.onSend
	f.mu.Unlock()

	if hook != nil {
		hook(m)
	}
	return email.Result{DevLink: p.Link}, nil
}

func (f *fakeMailer) sentOfKind(kind email.Kind) []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMail
	for _, m := range f.sent {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}
