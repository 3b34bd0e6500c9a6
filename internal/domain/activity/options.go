package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	ActivityType *ActivityType
	Source       string
	Limit        int
	Offset       int
}
