package models

import "time"

// SuperAdminID identifies the built-in administrator record. It can never be
// deleted or suspended.
const SuperAdminID = "1"

// Role is the permission level of a member.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// MemberStatus is the account state of a member.
type MemberStatus string

const (
	MemberActive    MemberStatus = "Active"
	MemberSuspended MemberStatus = "Suspended"
)

// UsageKind names one of the daily usage counters.
type UsageKind string

const (
	UsageKeywords UsageKind = "keywords"
	UsageArticles UsageKind = "articles"
	UsageImages   UsageKind = "images"
)

// Valid reports whether k is a known counter.
func (k UsageKind) Valid() bool {
	switch k {
	case UsageKeywords, UsageArticles, UsageImages:
		return true
	}
	return false
}

// Usage holds the per-member daily counters.
type Usage struct {
	Keywords  int       `json:"keywords"`
	Articles  int       `json:"articles"`
	Images    int       `json:"images"`
	LastReset time.Time `json:"lastReset"`
}

// Member is a dashboard account.
type Member struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	AccessKey    string       `json:"accessKey"`
	Role         Role         `json:"role"`
	Status       MemberStatus `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	LastActive   *time.Time   `json:"lastActive,omitempty"`
	GeminiAPIKey string       `json:"geminiApiKey,omitempty"`
	Usage        *Usage       `json:"usage,omitempty"`
}

// IsActive reports whether the member may sign in.
func (m *Member) IsActive() bool {
	return m.Status == MemberActive
}

// IsProtected reports whether m is the built-in administrator.
func (m *Member) IsProtected() bool {
	return m.ID == SuperAdminID
}

// DefaultAdmin returns the record seeded into an empty member list.
func DefaultAdmin(now time.Time) Member {
	return Member{
		ID:        SuperAdminID,
		Name:      "Master Admin",
		Email:     "admin@autostudio.ai",
		AccessKey: "admin123",
		Role:      RoleAdmin,
		Status:    MemberActive,
		CreatedAt: now,
	}
}
