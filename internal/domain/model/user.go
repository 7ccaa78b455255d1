package model

import "time"

// ManagedUser mirrors a CMS user record. Copies held here are transient and
// may be stale; the backend stays the source of truth.
type ManagedUser struct {
	ID        EntityID  `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Blocked   bool      `json:"blocked"`
	Warnings  int       `json:"warnings"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserStatus int

const (
	UserActive UserStatus = iota
	UserWarned
	UserBlocked
)

// Status derives the list glyph state; blocked wins over warnings.
func (u *ManagedUser) Status() UserStatus {
	switch {
	case u.Blocked:
		return UserBlocked
	case u.Warnings > 0:
		return UserWarned
	default:
		return UserActive
	}
}

// UserStats summarizes a bounded sample of users.
type UserStats struct {
	Total   int
	Blocked int
	Warned  int
	Active  int
}

func NewUserStats(users []*ManagedUser) UserStats {
	s := UserStats{Total: len(users)}
	for _, u := range users {
		if u.Blocked {
			s.Blocked++
		}
		if u.Warnings > 0 {
			s.Warned++
		}
	}
	s.Active = s.Total - s.Blocked
	return s
}
