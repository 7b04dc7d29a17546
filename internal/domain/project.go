package domain

import "time"

// Project groups tickets under a short key such as "MJ".
type Project struct {
	ID        int64
	Name      string
	Key       string
	CreatedAt time.Time
	UpdatedAt time.Time
}
