package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	domainauth "vidaview/internal/domain/auth"
	domainuser "vidaview/internal/domain/user"
)

// UserRepository keeps users in process memory, indexed by normalized email.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[domainuser.ID]domainuser.User
	emailID map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[domainuser.ID]domainuser.User),
		emailID: make(map[string]domainuser.ID),
	}
}

func (r *UserRepository) ByID(_ context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(id)
}

func (r *UserRepository) ByEmail(_ context.Context, email string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.emailID[domainuser.NormalizeEmail(email)]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return r.lookup(id)
}

// Save upserts user. Moving an email onto a second account is rejected and a
// changed email frees the old one.
func (r *UserRepository) Save(_ context.Context, user *domainuser.User) error {
	if user == nil || strings.TrimSpace(string(user.ID)) == "" {
		return domainuser.ErrIDRequired
	}
	email := domainuser.NormalizeEmail(user.Email)
	if email == "" {
		return domainuser.ErrEmailRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, taken := r.emailID[email]; taken && owner != user.ID {
		return domainuser.ErrEmailAlreadyUsed
	}
	if previous, ok := r.users[user.ID]; ok {
		delete(r.emailID, domainuser.NormalizeEmail(previous.Email))
	}
	r.emailID[email] = user.ID
	r.users[user.ID] = *user
	return nil
}

// CountByRole tallies active users per role.
func (r *UserRepository) CountByRole(context.Context) (map[domainuser.Role]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domainuser.Role]int, 3)
	for _, user := range r.users {
		if user.Active {
			counts[user.Role]++
		}
	}
	return counts, nil
}

func (r *UserRepository) lookup(id domainuser.ID) (*domainuser.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return &user, nil
}

// SessionStore keeps sessions by digest with a per-user index for revocation.
type SessionStore struct {
	mu     sync.Mutex
	now    func() time.Time
	byID   map[domainauth.Digest]domainauth.Session
	byUser map[domainuser.ID][]domainauth.Digest
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		now:    time.Now,
		byID:   make(map[domainauth.Digest]domainauth.Session),
		byUser: make(map[domainuser.ID][]domainauth.Digest),
	}
}

func (s *SessionStore) Save(_ context.Context, session *domainauth.Session) error {
	if session == nil || session.ID == "" {
		return domainauth.ErrTokenRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[session.ID]; !exists {
		s.byUser[session.UserID] = append(s.byUser[session.UserID], session.ID)
	}
	s.byID[session.ID] = *session
	return nil
}

// Get drops and hides expired sessions, as the Mongo TTL index would.
func (s *SessionStore) Get(_ context.Context, id domainauth.Digest) (*domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byID[id]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		s.remove(id)
		return nil, domainauth.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, id domainauth.Digest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
	return nil
}

func (s *SessionStore) RevokeUser(_ context.Context, userID domainuser.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.byUser[userID] {
		delete(s.byID, id)
	}
	delete(s.byUser, userID)
	return nil
}

func (s *SessionStore) remove(id domainauth.Digest) {
	session, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	ids := s.byUser[session.UserID]
	for i, other := range ids {
		if other == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(s.byUser, session.UserID)
		return
	}
	s.byUser[session.UserID] = ids
}

var _ domainuser.Repository = (*UserRepository)(nil)
var _ domainauth.SessionStore = (*SessionStore)(nil)
