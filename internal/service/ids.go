package service

import "github.com/oklog/ulid/v2"

// newID returns a time-ordered unique identifier.
func newID() string {
	return ulid.Make().String()
}
