package service

const (
	// Time windows
	EpocLookbackHours = 72 // workouts ending earlier no longer count toward EPOC
	ProjectionHours   = 48

	// Report limits
	RecentWorkoutsLimit = 10
)
