package domain

import "time"

// OwnerID is the id of the single account allowed to author posts.
const OwnerID int64 = 1

// User represents a registered reader or the site owner.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// IsOwner reports whether the user is the site owner.
func (u *User) IsOwner() bool {
	return u != nil && u.ID == OwnerID
}
