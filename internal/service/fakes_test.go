package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iliyamo/customer-auth/internal/model"
	"github.com/iliyamo/customer-auth/internal/repository"
)

// memStore is an in-memory UserStore with the same conditional semantics as
// the MySQL repository.
type memStore struct {
	mu    sync.Mutex
	users map[string]model.User // by customer id
	err   error                 // returned by every call when set
}

func newMemStore(users ...model.User) *memStore {
	s := &memStore{users: map[string]model.User{}}
	for _, u := range users {
		s.users[u.CustomerID] = u
	}
	return s
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *memStore) CreateMany(_ context.Context, users []*model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	seen := map[string]bool{}
	for _, u := range s.users {
		seen[u.Email] = true
	}
	for _, u := range users {
		if seen[u.Email] {
			return repository.ErrEmailExists
		}
		seen[u.Email] = true
	}
	for _, u := range users {
		s.users[u.CustomerID] = *u
	}
	return nil
}

func (s *memStore) SaveVerificationCode(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	cur, ok := s.users[u.CustomerID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.VerificationCode = u.VerificationCode
	cur.VerificationCodeExpiry = u.VerificationCodeExpiry
	s.users[u.CustomerID] = cur
	return nil
}

func (s *memStore) CompletePasswordReset(_ context.Context, u *model.User, code string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	cur, ok := s.users[u.CustomerID]
	if !ok || cur.VerificationCode == nil || *cur.VerificationCode != code ||
		cur.VerificationCodeExpiry == nil || cur.VerificationCodeExpiry.Before(now) {
		return repository.ErrStaleResetCode
	}
	cur.PasswordHash = u.PasswordHash
	cur.PasswordSalt = u.PasswordSalt
	cur.VerificationCode = nil
	cur.VerificationCodeExpiry = nil
	s.users[u.CustomerID] = cur
	return nil
}

func (s *memStore) UpdateLanguage(_ context.Context, id, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	cur, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Language = language
	s.users[id] = cur
	return nil
}

func (s *memStore) UpdatePassword(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	cur, ok := s.users[u.CustomerID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.PasswordHash, cur.PasswordSalt = u.PasswordHash, u.PasswordSalt
	s.users[u.CustomerID] = cur
	return nil
}

func (s *memStore) get(id string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *memStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

type sentMail struct {
	To, Subject, Body string
}

// recordingNotifier captures e-mails instead of sending them.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (n *recordingNotifier) SendAsync(email, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{email, subject, body})
}

func (n *recordingNotifier) all() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMail(nil), n.sent...)
}

var errDB = errors.New("db is down")
