package domain

import "context"

// Announcer delivers announcements to the user. Implementations can echo
// to a terminal, speak through a speech output, or both.
type Announcer interface {
	Announce(ctx context.Context, a Announcement) error
}
