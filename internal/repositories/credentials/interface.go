// Package credentials persists the opaque bearer token in a single named
// slot of the local database. The slot is overwritten wholesale on every
// successful login/refresh and cleared on logout or session expiry; it is
// never partially updated.
package credentials

import "context"

type Repository interface {
	// Get returns the stored access token, or "" when the slot is empty.
	Get(ctx context.Context) (string, error)

	// Set overwrites the slot with a new access token.
	Set(ctx context.Context, token string) error

	// Clear empties the slot.
	Clear(ctx context.Context) error
}
