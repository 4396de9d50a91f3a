package domain

import "time"

// User is a lightweight profile keyed by the identity issued by the messaging platform.
type User struct {
	ID          int64
	DisplayName string
	Username    *string
	CreatedAt   time.Time
}
