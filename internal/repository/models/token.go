package models

import "time"

// TokenRecord is one issued session. At most one record per user may have
// Deactivated == false at any committed point in time; the issuer enforces
// this by tombstoning all prior records inside the same transaction that
// inserts the replacement.
type TokenRecord struct {
	ID          int64          `db:"id" json:"id"`
	AccessValue string         `db:"access_value" json:"access_value"`
	UserEmail   string         `db:"user_email" json:"user_email"`
	Deactivated bool           `db:"deactivated" json:"deactivated"`
	Expired     bool           `db:"expired" json:"expired"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	Refresh     *RefreshRecord `db:"-" json:"refresh"`
}

// RefreshRecord is the opaque long-lived companion credential. It shares the
// lifetime of its owning TokenRecord and is deleted with it.
type RefreshRecord struct {
	ID               int64     `db:"id" json:"id"`
	TokenID          int64     `db:"token_id" json:"token_id"`
	Value            string    `db:"value" json:"value"`
	ExpirationStatus bool      `db:"expiration_status" json:"expiration_status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	ExpiresAt        time.Time `db:"expires_at" json:"expires_at"`
}
