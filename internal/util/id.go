package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random hex identifier for users, conversations, and
// sermons.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
