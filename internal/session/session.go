// Package session keeps the username of the signed-in user between runs.
//
// A session is only a remembered name: it has no expiry and is never checked
// against the users table again, so it may outlive the user record.
package session

// Store holds at most one username.
type Store interface {
	// Load returns the stored username and whether one is present.
	Load() (string, bool)
	// Save replaces the stored username.
	Save(username string) error
	// Clear removes the stored username. Clearing an empty store is not an error.
	Clear() error
}
