package entity

import "time"

// AuthToken is one issued login token for a user. A user may hold several
// concurrent rows (one per device/login). A token authorizes a request only
// while its row exists; deleting the rows for a user logs that user out
// everywhere.
type AuthToken struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
}
