package studio

import (
	"context"
	"errors"
	"fmt"

	"github.com/bilgisen/autostudio/internal/members"
	"github.com/bilgisen/autostudio/internal/models"
)

// Session is the caller of a studio operation.
type Session struct {
	// Member is nil for anonymous callers of a public instance.
	Member *models.Member
	// APIKey overrides the default Gemini key when set.
	APIKey string
}

// IsAdmin reports whether the caller is an admin member.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Member != nil && s.Member.Role == models.RoleAdmin
}

// Access resolves the caller for key. In private mode a valid key of an
// Active member is required. In public mode anyone is admitted and a valid
// key only attaches the member.
func (s *Service) Access(ctx context.Context, key string) (*Session, error) {
	private := s.state.SystemConfig().IsPrivateMode
	if key == "" {
		if private {
			return nil, members.ErrAccessDenied
		}
		return &Session{}, nil
	}

	m, err := s.members.Authenticate(ctx, key)
	if err != nil {
		if !private && errors.Is(err, members.ErrAccessDenied) {
			return &Session{}, nil
		}
		return nil, err
	}
	return &Session{Member: m, APIKey: m.GeminiAPIKey}, nil
}

// Login is Access plus an activity log entry. magic marks a key that came
// from a magic link.
func (s *Service) Login(ctx context.Context, key string, magic bool) (*Session, error) {
	sess, err := s.Access(ctx, key)
	if err != nil {
		return nil, err
	}
	switch {
	case sess.Member == nil:
	case magic:
		s.logs.Success(fmt.Sprintf("Magic Link detected. Welcome back, %s!", sess.Member.Name))
	default:
		s.logs.Success(fmt.Sprintf("Access granted to %s (%s)", sess.Member.Name, sess.Member.Role))
	}
	return sess, nil
}

// SetGeminiKey stores a personal Gemini key. Members keep it on their
// record. Anonymous callers keep it client side and send it per request.
func (s *Service) SetGeminiKey(ctx context.Context, sess *Session, key string) error {
	if key == "" {
		return &members.ValidationError{Message: "Please enter a valid Gemini API Key."}
	}
	if sess == nil || sess.Member == nil {
		s.logs.Success("Gemini API Key saved for this session.")
		return nil
	}

	m, err := s.members.SetAPIKey(ctx, sess.Member.ID, key)
	if err != nil {
		s.logs.Error("Failed to update Gemini API Key.")
		return err
	}
	sess.Member = m
	sess.APIKey = key
	s.logs.Success("Gemini API Key updated successfully.")
	return nil
}
