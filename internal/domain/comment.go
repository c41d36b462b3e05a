package domain

import "time"

// Comment is a reader's reply attached to a single post.
type Comment struct {
	ID          int64
	PostID      int64
	CommenterID int64
	Content     string
	CreatedAt   time.Time

	Commenter *User
}
