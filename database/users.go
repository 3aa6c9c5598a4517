package database

import (
	"context"
	"strings"
	"sync"

	"github.com/anjiri1684/learnlingo/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// UserStore persists accounts for the authentication backend.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

type GormUsers struct {
	db *gorm.DB
}

func NewGormUsers(db *gorm.DB) *GormUsers {
	return &GormUsers{db: db}
}

func (u *GormUsers) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	err := u.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrapf(ErrDuplicate, "user %s", user.Email)
	}
	if err != nil {
		return unavailable("create user", err)
	}
	return nil
}

func (u *GormUsers) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return u.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (u *GormUsers) GetUserByID(ctx context.Context, id string) (models.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return models.User{}, errors.Wrapf(ErrNotFound, "user %s", id)
	}
	return u.first(ctx, "id = ?", uid)
}

func (u *GormUsers) first(ctx context.Context, query string, arg interface{}) (models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, errors.Wrap(ErrNotFound, "user")
	}
	if err != nil {
		return models.User{}, unavailable("get user", err)
	}
	return user, nil
}

func (u *GormUsers) UpdateUser(ctx context.Context, user *models.User) error {
	if err := u.db.WithContext(ctx).Save(user).Error; err != nil {
		return unavailable("update user", err)
	}
	return nil
}

// MemoryUsers is an in-memory UserStore. Setting Unavailable makes every call fail.
type MemoryUsers struct {
	mu          sync.RWMutex
	byID        map[uuid.UUID]models.User
	Unavailable bool
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byID: make(map[uuid.UUID]models.User)}
}

func (m *MemoryUsers) SetUnavailable(v bool) {
	m.mu.Lock()
	m.Unavailable = v
	m.mu.Unlock()
}

func (m *MemoryUsers) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Unavailable {
		return unavailable("create user", errors.New("injected failure"))
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range m.byID {
		if existing.Email == user.Email {
			return errors.Wrapf(ErrDuplicate, "user %s", user.Email)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.byID[user.ID] = *user
	return nil
}

func (m *MemoryUsers) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Unavailable {
		return models.User{}, unavailable("get user", errors.New("injected failure"))
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range m.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, errors.Wrap(ErrNotFound, "user")
}

func (m *MemoryUsers) GetUserByID(_ context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Unavailable {
		return models.User{}, unavailable("get user", errors.New("injected failure"))
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return models.User{}, errors.Wrapf(ErrNotFound, "user %s", id)
	}
	user, ok := m.byID[uid]
	if !ok {
		return models.User{}, errors.Wrap(ErrNotFound, "user")
	}
	return user, nil
}

func (m *MemoryUsers) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Unavailable {
		return unavailable("update user", errors.New("injected failure"))
	}
	if _, ok := m.byID[user.ID]; !ok {
		return errors.Wrap(ErrNotFound, "user")
	}
	m.byID[user.ID] = *user
	return nil
}
