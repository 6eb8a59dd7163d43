package activity

import "time"

// DefaultLimit caps the feed when no limit is given.
const DefaultLimit = 20

// ListActivityOptions provides filtering options for the feed.
type ListActivityOptions struct {
	Since        *time.Time
	OwnerID      string
	ActivityType *ActivityType
	Limit        int
}
