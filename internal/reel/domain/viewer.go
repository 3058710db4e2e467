package domain

// Viewer is the identity collaborator's view of a student account.
type Viewer struct {
	ID        string
	Active    bool
	Suspended bool
	DeviceID  string // currently registered playback device, empty if none
}

// Enrollment grants a viewer access to a course.
type Enrollment struct {
	ViewerID string
	CourseID string
}
