package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anjiri1684/learnlingo/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Op names a Gateway method, for failure injection on Memory.
type Op string

const (
	OpListTeachers        Op = "ListTeachers"
	OpGetTeacher          Op = "GetTeacher"
	OpAddTeacher          Op = "AddTeacher"
	OpCreateBooking       Op = "CreateBooking"
	OpListUserBookings    Op = "ListUserBookings"
	OpListTeacherBookings Op = "ListTeacherBookings"
	OpGetFavoriteIDs      Op = "GetFavoriteIDs"
	OpSetFavorite         Op = "SetFavorite"
)

// Memory is a map-backed Gateway used in tests and demo mode.
type Memory struct {
	mu        sync.RWMutex
	teachers  []models.Teacher
	bookings  []models.Booking
	favorites map[string]map[string]time.Time
	failing   map[Op]bool
	calls     map[Op]int
	now       func() time.Time
}

func NewMemory(teachers ...models.Teacher) *Memory {
	m := &Memory{
		favorites: make(map[string]map[string]time.Time),
		failing:   make(map[Op]bool),
		calls:     make(map[Op]int),
		now:       time.Now,
	}
	for _, t := range teachers {
		t.ID = models.NormalizeID(t.ID)
		m.teachers = append(m.teachers, t)
	}
	return m
}

// Fail makes the given operations return ErrRemoteUnavailable until healed.
func (m *Memory) Fail(ops ...Op) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		m.failing[op] = true
	}
}

// Heal clears injected failures; with no arguments every operation is healed.
func (m *Memory) Heal(ops ...Op) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(ops) == 0 {
		m.failing = make(map[Op]bool)
		return
	}
	for _, op := range ops {
		delete(m.failing, op)
	}
}

// Calls reports how many times op was invoked, failed calls included.
func (m *Memory) Calls(op Op) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// enter records the call and returns the injected failure, if any. Callers hold m.mu.
func (m *Memory) enter(op Op) error {
	m.calls[op]++
	if m.failing[op] {
		return unavailable(string(op), errors.New("injected failure"))
	}
	return nil
}

func (m *Memory) ListTeachers(_ context.Context) ([]models.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpListTeachers); err != nil {
		return nil, err
	}
	out := make([]models.Teacher, len(m.teachers))
	copy(out, m.teachers)
	return out, nil
}

func (m *Memory) GetTeacher(_ context.Context, id string) (models.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpGetTeacher); err != nil {
		return models.Teacher{}, err
	}
	id = models.NormalizeID(id)
	for _, t := range m.teachers {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Teacher{}, errors.Wrapf(ErrNotFound, "teacher %s", id)
}

func (m *Memory) AddTeacher(_ context.Context, t models.Teacher) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpAddTeacher); err != nil {
		return "", err
	}
	t.ID = models.NormalizeID(t.ID)
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	for _, existing := range m.teachers {
		if existing.ID == t.ID {
			return "", errors.Wrapf(ErrDuplicate, "teacher %s", t.ID)
		}
	}
	m.teachers = append(m.teachers, t)
	return t.ID, nil
}

func (m *Memory) CreateBooking(_ context.Context, nb models.NewBooking) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpCreateBooking); err != nil {
		return models.Booking{}, err
	}
	booking := newBookingRecord(nb, m.now())
	m.bookings = append(m.bookings, booking)
	return booking, nil
}

func (m *Memory) ListUserBookings(_ context.Context, userID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpListUserBookings); err != nil {
		return nil, err
	}
	return m.filterBookings(func(b models.Booking) bool {
		return b.UserID != nil && *b.UserID == userID
	}), nil
}

func (m *Memory) ListTeacherBookings(_ context.Context, teacherID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpListTeacherBookings); err != nil {
		return nil, err
	}
	teacherID = models.NormalizeID(teacherID)
	return m.filterBookings(func(b models.Booking) bool {
		return b.TeacherID == teacherID
	}), nil
}

// filterBookings returns matches newest first. Callers hold m.mu.
func (m *Memory) filterBookings(keep func(models.Booking) bool) []models.Booking {
	out := []models.Booking{}
	for i := len(m.bookings) - 1; i >= 0; i-- {
		if keep(m.bookings[i]) {
			out = append(out, m.bookings[i])
		}
	}
	return out
}

func (m *Memory) GetFavoriteIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpGetFavoriteIDs); err != nil {
		return nil, err
	}
	set := m.favorites[userID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if set[ids[i]].Equal(set[ids[j]]) {
			return ids[i] < ids[j]
		}
		return set[ids[i]].Before(set[ids[j]])
	})
	return ids, nil
}

func (m *Memory) SetFavorite(_ context.Context, userID, teacherID string, present bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpSetFavorite); err != nil {
		return err
	}
	teacherID = models.NormalizeID(teacherID)
	set, ok := m.favorites[userID]
	if !present {
		if ok {
			delete(set, teacherID)
		}
		return nil
	}
	if !ok {
		set = make(map[string]time.Time)
		m.favorites[userID] = set
	}
	if _, exists := set[teacherID]; !exists {
		set[teacherID] = m.now()
	}
	return nil
}
