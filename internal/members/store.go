// Package members manages dashboard accounts on top of the persisted member
// list.
package members

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/bilgisen/autostudio/internal/state"
	"github.com/bilgisen/autostudio/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	accessKeyLength = 12
	accessKeyChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	usageWindow     = 24 * time.Hour
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	ErrNotFound     = errors.New("member not found")
	ErrProtected    = errors.New("the master admin account cannot be modified")
	ErrAccessDenied = errors.New("invalid access key or account suspended")
)

// ValidationError is returned by Add for bad input. Message is shown to the
// user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type newMember struct {
	Name  string `validate:"required"`
	Email string `validate:"required,basic_email"`
}

// Store is the member list. Every operation reads the current list from
// state, applies its change and writes it back. Operations are serialized
// within the process.
type Store struct {
	state      *state.AppState
	validate   *validator.Validate
	writeDelay time.Duration
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
	log        zerolog.Logger

	mu sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithWriteDelay sets the simulated latency applied to membership writes.
func WithWriteDelay(d time.Duration) Option {
	return func(s *Store) { s.writeDelay = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(st *state.AppState, opts ...Option) *Store {
	v := validator.New()
	_ = v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})

	s := &Store{
		state:      st,
		validate:   v,
		writeDelay: 800 * time.Millisecond,
		now:        time.Now,
		sleep:      utils.Sleep,
		log:        logger.Component("members"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all members, seeding the master admin when nothing usable is
// stored.
func (s *Store) List(ctx context.Context) []models.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns the member with id.
func (s *Store) Get(ctx context.Context, id string) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load(ctx)
	i := indexOf(list, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	m := list[i]
	return &m, nil
}

// Add validates and creates an Active member with a fresh ID and access key.
func (s *Store) Add(ctx context.Context, name, email string, role models.Role) (*models.Member, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	if err := s.validateNew(name, email); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, &ValidationError{Message: "Invalid role."}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load(ctx)
	for _, m := range list {
		if strings.EqualFold(m.Email, email) {
			return nil, &ValidationError{Message: "A member with this email already exists."}
		}
	}

	key, err := uniqueAccessKey(list)
	if err != nil {
		return nil, err
	}
	m := models.Member{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     strings.ToLower(email),
		AccessKey: key,
		Role:      role,
		Status:    models.MemberActive,
		CreatedAt: s.now(),
	}
	s.state.SaveMembers(ctx, append(list, m))

	s.log.Info().Str("member_id", m.ID).Str("role", string(m.Role)).Msg("Member added")
	return &m, nil
}

// Delete removes a member. The master admin is never removed.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == models.SuperAdminID {
		return ErrProtected
	}
	if err := s.delay(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load(ctx)
	i := indexOf(list, id)
	if i < 0 {
		return nil
	}
	s.state.SaveMembers(ctx, append(list[:i:i], list[i+1:]...))
	s.log.Info().Str("member_id", id).Msg("Member deleted")
	return nil
}

// ToggleStatus flips a member between Active and Suspended.
func (s *Store) ToggleStatus(ctx context.Context, id string) (*models.Member, error) {
	if id == models.SuperAdminID {
		return nil, ErrProtected
	}
	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	return s.update(ctx, id, func(m *models.Member) {
		if m.Status == models.MemberActive {
			m.Status = models.MemberSuspended
		} else {
			m.Status = models.MemberActive
		}
	})
}

// SetAPIKey stores a personal Gemini key for the member. An empty key
// clears it.
func (s *Store) SetAPIKey(ctx context.Context, id, key string) (*models.Member, error) {
	return s.update(ctx, id, func(m *models.Member) {
		m.GeminiAPIKey = key
	})
}

// RecordUsage increments one daily counter. When the counters are missing
// or older than a day they all restart from zero first.
func (s *Store) RecordUsage(ctx context.Context, id string, kind models.UsageKind) (*models.Member, error) {
	if !kind.Valid() {
		return nil, &ValidationError{Message: "Invalid usage type."}
	}

	return s.update(ctx, id, func(m *models.Member) {
		now := s.now()
		if m.Usage == nil || now.Sub(m.Usage.LastReset) > usageWindow {
			m.Usage = &models.Usage{LastReset: now}
		}
		switch kind {
		case models.UsageKeywords:
			m.Usage.Keywords++
		case models.UsageArticles:
			m.Usage.Articles++
		case models.UsageImages:
			m.Usage.Images++
		}
	})
}

// Authenticate returns the Active member owning key and marks it active.
func (s *Store) Authenticate(ctx context.Context, key string) (*models.Member, error) {
	if key == "" {
		return nil, ErrAccessDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load(ctx)
	for i := range list {
		if list[i].AccessKey != key || !list[i].IsActive() {
			continue
		}
		now := s.now()
		list[i].LastActive = &now
		s.state.SaveMembers(ctx, list)
		m := list[i]
		return &m, nil
	}

	s.log.Warn().Str("key_fp", utils.Fingerprint(key)).Msg("Access denied")
	return nil, ErrAccessDenied
}

func (s *Store) update(ctx context.Context, id string, fn func(m *models.Member)) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load(ctx)
	i := indexOf(list, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	fn(&list[i])
	s.state.SaveMembers(ctx, list)

	m := list[i]
	return &m, nil
}

func (s *Store) load(ctx context.Context) []models.Member {
	list, ok := s.state.Members(ctx)
	if !ok {
		return []models.Member{models.DefaultAdmin(s.now())}
	}
	return list
}

func (s *Store) validateNew(name, email string) error {
	err := s.validate.Struct(newMember{Name: name, Email: email})
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return &ValidationError{Message: "Name and Email are required."}
		}
	}
	return &ValidationError{Message: "Invalid email format."}
}

func (s *Store) delay(ctx context.Context) error {
	if s.writeDelay <= 0 {
		return ctx.Err()
	}
	return s.sleep(ctx, s.writeDelay)
}

func indexOf(list []models.Member, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func uniqueAccessKey(existing []models.Member) (string, error) {
	for {
		key, err := randomKey(accessKeyLength)
		if err != nil {
			return "", err
		}
		taken := false
		for _, m := range existing {
			if m.AccessKey == key {
				taken = true
				break
			}
		}
		if !taken {
			return key, nil
		}
	}
}

func randomKey(n int) (string, error) {
	max := big.NewInt(int64(len(accessKeyChars)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = accessKeyChars[idx.Int64()]
	}
	return string(b), nil
}
