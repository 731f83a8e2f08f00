package domain

import "time"

// Organization is the tenant that owns bank accounts and customers.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatorID string    `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}
