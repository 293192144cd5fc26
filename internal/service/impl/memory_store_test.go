package impl

import (
	"context"
	"errors"
	"sync"
	"time"

	"userauth/internal/domain"
	"userauth/internal/store"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*domain.User
	emailIndex  map[string]uuid.UUID
	googleIndex map[string]uuid.UUID

	// failOn makes the named user store method return errStoreDown.
	failOn string
	// beforeTx runs with the lock held at the start of every transaction,
	// standing in for writes committed by concurrent requests.
	beforeTx func(m *memoryStore)
}

var errStoreDown = errors.New("store unavailable")

type storeSnapshot struct {
	users       map[uuid.UUID]*domain.User
	emailIndex  map[string]uuid.UUID
	googleIndex map[string]uuid.UUID
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:       make(map[uuid.UUID]*domain.User),
		emailIndex:  make(map[string]uuid.UUID),
		googleIndex: make(map[string]uuid.UUID),
	}
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.beforeTx != nil {
		m.beforeTx(m)
	}
	snapshot := m.snapshot()
	tx := &memoryTx{store: m}
	if err := fn(tx); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *memoryStore) snapshot() storeSnapshot {
	users := make(map[uuid.UUID]*domain.User, len(m.users))
	for id, user := range m.users {
		users[id] = cloneUser(user)
	}
	emails := make(map[string]uuid.UUID, len(m.emailIndex))
	for k, v := range m.emailIndex {
		emails[k] = v
	}
	google := make(map[string]uuid.UUID, len(m.googleIndex))
	for k, v := range m.googleIndex {
		google[k] = v
	}
	return storeSnapshot{users: users, emailIndex: emails, googleIndex: google}
}

func (m *memoryStore) restore(s storeSnapshot) {
	m.users = s.users
	m.emailIndex = s.emailIndex
	m.googleIndex = s.googleIndex
}

func (m *memoryStore) userByEmail(email string) (*domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.emailIndex[email]
	if !ok {
		return nil, false
	}
	return cloneUser(m.users[id]), true
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// seed inserts u directly, bypassing transactions.
func (m *memoryStore) seed(u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(u)
}

// setResetOTP attaches code to the user with email, bypassing transactions.
func (m *memoryStore) setResetOTP(email, code string, expiry time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	usr := m.users[m.emailIndex[email]]
	usr.ResetPasswordOTP = &code
	usr.ResetPasswordExpiry = &expiry
}

func (m *memoryStore) insert(u *domain.User) {
	m.users[u.ID] = cloneUser(u)
	m.emailIndex[u.Email] = u.ID
	if u.HasGoogle() {
		m.googleIndex[*u.GoogleID] = u.ID
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Password = cloneString(u.Password)
	c.Name = cloneString(u.Name)
	c.Avatar = cloneString(u.Avatar)
	c.GoogleID = cloneString(u.GoogleID)
	c.ResetPasswordOTP = cloneString(u.ResetPasswordOTP)
	if u.ResetPasswordExpiry != nil {
		exp := *u.ResetPasswordExpiry
		c.ResetPasswordExpiry = &exp
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

type memoryTx struct {
	store *memoryStore
}

func (m *memoryTx) Users() userStore { return &memoryUserStore{store: m.store} }

type memoryUserStore struct {
	store *memoryStore
}

func (u *memoryUserStore) fail(op string) error {
	if u.store.failOn == op {
		return errStoreDown
	}
	return nil
}

func (u *memoryUserStore) Create(ctx context.Context, usr *domain.User) error {
	if err := u.fail("Create"); err != nil {
		return err
	}
	if _, ok := u.store.emailIndex[usr.Email]; ok {
		return store.ErrDuplicateKey
	}
	if usr.HasGoogle() {
		if _, ok := u.store.googleIndex[*usr.GoogleID]; ok {
			return store.ErrDuplicateKey
		}
		u.store.googleIndex[*usr.GoogleID] = usr.ID
	}
	u.store.users[usr.ID] = cloneUser(usr)
	u.store.emailIndex[usr.Email] = usr.ID
	return nil
}

func (u *memoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := u.fail("GetByID"); err != nil {
		return nil, err
	}
	usr, ok := u.store.users[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return cloneUser(usr), nil
}

func (u *memoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := u.fail("GetByEmail"); err != nil {
		return nil, err
	}
	id, ok := u.store.emailIndex[email]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return cloneUser(u.store.users[id]), nil
}

func (u *memoryUserStore) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	if err := u.fail("GetByGoogleID"); err != nil {
		return nil, err
	}
	id, ok := u.store.googleIndex[googleID]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return cloneUser(u.store.users[id]), nil
}

func (u *memoryUserStore) LinkGoogle(ctx context.Context, id uuid.UUID, googleID string, name, avatar *string) error {
	if err := u.fail("LinkGoogle"); err != nil {
		return err
	}
	usr, ok := u.store.users[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	if other, taken := u.store.googleIndex[googleID]; taken && other != id {
		return store.ErrDuplicateKey
	}
	usr.GoogleID = &googleID
	u.store.googleIndex[googleID] = id
	if name != nil {
		usr.Name = cloneString(name)
	}
	if avatar != nil {
		usr.Avatar = cloneString(avatar)
	}
	return nil
}

func (u *memoryUserStore) SetResetOTP(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	if err := u.fail("SetResetOTP"); err != nil {
		return err
	}
	usr, ok := u.store.users[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	exp := expiry.UTC()
	usr.ResetPasswordOTP = &code
	usr.ResetPasswordExpiry = &exp
	return nil
}

func (u *memoryUserStore) ClearResetOTP(ctx context.Context, id uuid.UUID, code string) error {
	if err := u.fail("ClearResetOTP"); err != nil {
		return err
	}
	usr, ok := u.store.users[id]
	if !ok || usr.ResetPasswordOTP == nil || *usr.ResetPasswordOTP != code {
		return nil
	}
	usr.ResetPasswordOTP = nil
	usr.ResetPasswordExpiry = nil
	return nil
}

func (u *memoryUserStore) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash, code string, now time.Time) (bool, error) {
	if err := u.fail("ResetPassword"); err != nil {
		return false, err
	}
	usr, ok := u.store.users[id]
	if !ok || !usr.HasPendingOTP() {
		return false, nil
	}
	if *usr.ResetPasswordOTP != code || usr.ResetPasswordExpiry.Before(now) {
		return false, nil
	}
	usr.Password = &passwordHash
	usr.ResetPasswordOTP = nil
	usr.ResetPasswordExpiry = nil
	return true, nil
}
