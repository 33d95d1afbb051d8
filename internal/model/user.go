package model

import "time"

// Supported external identity providers.
const (
	ProviderVK     = "vk"
	ProviderYandex = "yandex"
)

// User is the persistent account row. Email and PasswordHash are nullable:
// accounts created through an external provider may carry neither.
type User struct {
	ID           int64
	Username     string
	Email        *string
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthMethod links a user to one external provider identity.
// (provider, external_id) is unique across the table.
type AuthMethod struct {
	ID         int64
	UserID     int64
	Provider   string
	ExternalID string
	CreatedAt  time.Time
}

// ExternalUser is the normalized profile a provider client hands to the
// auth service. How it was obtained (code exchange, token introspection)
// stays inside internal/client.
type ExternalUser struct {
	Provider   string
	ExternalID string
	Username   string
	Email      *string
}
