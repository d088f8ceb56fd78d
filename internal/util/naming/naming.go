package naming

import (
	"fmt"
	"strings"
)

// Naming functions for identity resources.
// Group and admin names are pure functions of community attributes so that
// re-deriving them for the same community is idempotent and collisions can be
// detected before any mutation.

// DefaultAdminDomain is the mail domain for derived admin usernames.
const DefaultAdminDomain = "wisefido.com"

// Group returns the Cognito group name for a community ID.
func Group(communityID string) string {
	return fmt.Sprintf("community-%s", communityID)
}

// GroupDescription returns the human-readable description stored on the group.
// Used by the collision guard to match groups back to communities when the
// data backend cannot be queried.
func GroupDescription(communityName, communityID string) string {
	return fmt.Sprintf("Caretakers of %s (community %s)", communityName, communityID)
}

// AdminEmail derives the administrative username for a community: the display
// name lower-cased with all non-alphanumeric characters stripped, at the given
// mail domain.
func AdminEmail(communityName, domain string) string {
	if domain == "" {
		domain = DefaultAdminDomain
	}
	var b strings.Builder
	for _, r := range strings.ToLower(communityName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return fmt.Sprintf("%s@%s", b.String(), domain)
}
