package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/uniconsult/internal/app/models"
	"github.com/yigit/uniconsult/internal/pkg/apperrors"
	"github.com/yigit/uniconsult/internal/pkg/email"
)

// memStore is an in-memory stand-in for the four Postgres repositories. It keeps
// the same constraints the schema enforces: unique email and faculty_id, one
// Scheduled row per slot, cascading deletes.
type memStore struct {
	mu            sync.Mutex
	nextID        int64
	users         map[int64]*models.User
	statuses      map[int64]*models.FacultyStatus
	consultations map[int64]*models.Consultation
	sessions      map[uuid.UUID]*models.Session
	now           func() time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[int64]*models.User{},
		statuses:      map[int64]*models.FacultyStatus{},
		consultations: map[int64]*models.Consultation{},
		sessions:      map[uuid.UUID]*models.Session{},
		now:           time.Now,
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

// --- IUserRepository ---

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
		if u.FacultyID != nil && existing.FacultyID != nil && *existing.FacultyID == *u.FacultyID {
			return apperrors.ErrIdentifierExists
		}
	}
	u.ID = m.id()
	u.CreatedAt = m.now().UTC()
	m.users[u.ID] = cloneUser(u)
	if u.IsFaculty() {
		m.statuses[u.ID] = &models.FacultyStatus{ID: m.id(), FacultyID: u.ID, Status: models.StatusOffline, LastUpdated: m.now().UTC()}
	}
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (m *memStore) FacultyIDExists(_ context.Context, facultyID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.FacultyID != nil && *u.FacultyID == facultyID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) sortedUsers(keep func(*models.User) bool) []*models.User {
	out := []*models.User{}
	for _, u := range m.users {
		if keep(u) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoleType != out[j].RoleType {
			return out[i].RoleType < out[j].RoleType
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (m *memStore) ListUsers(context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedUsers(func(*models.User) bool { return true }), nil
}

func (m *memStore) ListByRole(_ context.Context, role models.RoleType) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedUsers(func(u *models.User) bool { return u.RoleType == role }), nil
}

func (m *memStore) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(m.users, id)
	delete(m.statuses, id)
	for cid, c := range m.consultations {
		if c.HasParticipant(id) {
			delete(m.consultations, cid)
		}
	}
	for sid, s := range m.sessions {
		if s.UserID == id {
			delete(m.sessions, sid)
		}
	}
	return nil
}

func (m *memStore) CountUsers(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

// --- IFacultyStatusRepository ---

func (m *memStore) ListStatuses(context.Context) ([]*models.FacultyStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.FacultyStatus{}
	for id, s := range m.statuses {
		if u, ok := m.users[id]; ok && u.IsFaculty() {
			c := *s
			c.FacultyName = u.Name
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FacultyName < out[j].FacultyName })
	return out, nil
}

func (m *memStore) GetByFacultyID(_ context.Context, facultyID int64) (*models.FacultyStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.statuses[facultyID]
	if !ok {
		return nil, apperrors.ErrFacultyStatusNotFound
	}
	c := *s
	return &c, nil
}

func (m *memStore) Upsert(_ context.Context, facultyID int64, status models.AvailabilityStatus, at time.Time) (*models.FacultyStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[facultyID]; !ok {
		return nil, apperrors.ErrUserNotFound
	}
	s, ok := m.statuses[facultyID]
	if !ok {
		s = &models.FacultyStatus{ID: m.id(), FacultyID: facultyID, LastUpdated: at}
		m.statuses[facultyID] = s
	}
	s.Status = status
	if at.After(s.LastUpdated) {
		s.LastUpdated = at
	}
	c := *s
	return &c, nil
}

// --- IConsultationRepository ---

func (m *memStore) withNames(c *models.Consultation) *models.Consultation {
	out := *c
	if u, ok := m.users[c.StudentID]; ok {
		out.StudentName = u.Name
	}
	if u, ok := m.users[c.FacultyID]; ok {
		out.FacultyName = u.Name
	}
	return &out
}

func (m *memStore) List(_ context.Context, f models.ConsultationFilter) ([]*models.Consultation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Consultation{}
	for _, c := range m.consultations {
		if f.StudentID != 0 && c.StudentID != f.StudentID {
			continue
		}
		if f.FacultyID != 0 && c.FacultyID != f.FacultyID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, m.withNames(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Datetime.Equal(out[j].Datetime) {
			return out[i].Datetime.After(out[j].Datetime)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*models.Consultation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.consultations[id]
	if !ok {
		return nil, apperrors.ErrConsultationNotFound
	}
	return m.withNames(c), nil
}

func (m *memStore) CreateScheduled(_ context.Context, c *models.Consultation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.Datetime = models.SlotInstant(c.Datetime)
	for _, existing := range m.consultations {
		if existing.FacultyID == c.FacultyID && existing.Datetime.Equal(c.Datetime) && existing.Status == models.ConsultationScheduled {
			return apperrors.ErrSlotTaken
		}
	}
	if _, ok := m.users[c.StudentID]; !ok {
		return apperrors.ErrUserNotFound
	}
	c.ID = m.id()
	c.Status = models.ConsultationScheduled
	c.CreatedAt = m.now().UTC()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	m.consultations[c.ID] = &stored
	return nil
}

func (m *memStore) Transition(_ context.Context, id int64, to models.ConsultationStatus, reason *string, by *models.RoleType) (*models.Consultation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.consultations[id]
	if !ok {
		return nil, apperrors.ErrConsultationNotFound
	}
	if c.Status != models.ConsultationScheduled {
		return nil, apperrors.ErrConsultationNotScheduled
	}
	c.Status = to
	if reason != nil {
		r := *reason
		c.Reason = &r
	}
	if by != nil {
		b := *by
		c.CancelledByRole = &b
	}
	c.UpdatedAt = m.now().UTC()
	out := *c
	return &out, nil
}

func (m *memStore) CompleteElapsed(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.consultations {
		if c.Status == models.ConsultationScheduled && c.Datetime.Before(cutoff) {
			c.Status = models.ConsultationCompleted
			n++
		}
	}
	return n, nil
}

// --- ISessionRepository ---

func (m *memStore) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.CreatedAt = m.now()
	c := *s
	m.sessions[s.ID] = &c
	return nil
}

func (m *memStore) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	if s.Revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if !s.Active(m.now()) {
		return nil, apperrors.ErrTokenExpired
	}
	c := *s
	return &c, nil
}

func (m *memStore) RevokeSession(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	s.Revoked = true
	return nil
}

func (m *memStore) RevokeAllUserSessions(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID == userID {
			s.Revoked = true
		}
	}
	return nil
}

func (m *memStore) CleanupExpiredSessions(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if !m.now().Before(s.ExpiresAt) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// --- collaborators ---

type recordingMailer struct {
	mu            sync.Mutex
	cancellations []email.CancellationNotice
	bookings      []email.BookingNotice
}

func (r *recordingMailer) SendCancellationNotice(n email.CancellationNotice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancellations = append(r.cancellations, n)
	return nil
}

func (r *recordingMailer) SendBookingNotice(n email.BookingNotice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, n)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(eventType string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}
