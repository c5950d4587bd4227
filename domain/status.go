package domain

import "fmt"

// ProjectStatus represents the overall delivery status of a project
type ProjectStatus int

const (
	ProjectStatusUnknown ProjectStatus = iota
	ProjectStatusActive
	ProjectStatusCompleted
	ProjectStatusArchived
)

func (s ProjectStatus) String() string {
	switch s {
	case ProjectStatusActive:
		return "active"
	case ProjectStatusCompleted:
		return "completed"
	case ProjectStatusArchived:
		return "archived"
	default:
		return "unknown"
	}
}

func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch s {
	case "active":
		return ProjectStatusActive, nil
	case "completed":
		return ProjectStatusCompleted, nil
	case "archived":
		return ProjectStatusArchived, nil
	case "unknown":
		return ProjectStatusUnknown, nil
	default:
		return ProjectStatusUnknown, fmt.Errorf("invalid project status: %q", s)
	}
}

// StepStatus represents the lifecycle status of a project step (milestone).
// Steps move linearly: upcoming -> current -> completed.
type StepStatus int

const (
	StepStatusUnknown StepStatus = iota
	StepStatusUpcoming
	StepStatusCurrent
	StepStatusCompleted
)

func (s StepStatus) String() string {
	switch s {
	case StepStatusUpcoming:
		return "upcoming"
	case StepStatusCurrent:
		return "current"
	case StepStatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

func ParseStepStatus(s string) (StepStatus, error) {
	switch s {
	case "upcoming":
		return StepStatusUpcoming, nil
	case "current":
		return StepStatusCurrent, nil
	case "completed":
		return StepStatusCompleted, nil
	case "unknown":
		return StepStatusUnknown, nil
	default:
		return StepStatusUnknown, fmt.Errorf("invalid step status: %q", s)
	}
}

// VersionStatus represents the review outcome of a deliverable version.
// The only transitions are pending -> approved and pending -> rejected;
// re-review requires uploading a new version.
type VersionStatus int

const (
	VersionStatusUnknown VersionStatus = iota
	VersionStatusPending
	VersionStatusApproved
	VersionStatusRejected
)

func (s VersionStatus) String() string {
	switch s {
	case VersionStatusPending:
		return "pending"
	case VersionStatusApproved:
		return "approved"
	case VersionStatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

func ParseVersionStatus(s string) (VersionStatus, error) {
	switch s {
	case "pending":
		return VersionStatusPending, nil
	case "approved":
		return VersionStatusApproved, nil
	case "rejected":
		return VersionStatusRejected, nil
	case "unknown":
		return VersionStatusUnknown, nil
	default:
		return VersionStatusUnknown, fmt.Errorf("invalid version status: %q", s)
	}
}

// FileStatus represents whether a shared file has been seen by the receiving party
type FileStatus int

const (
	FileStatusUnknown FileStatus = iota
	FileStatusNew
	FileStatusViewed
)

func (s FileStatus) String() string {
	switch s {
	case FileStatusNew:
		return "new"
	case FileStatusViewed:
		return "viewed"
	default:
		return "unknown"
	}
}

func ParseFileStatus(s string) (FileStatus, error) {
	switch s {
	case "new":
		return FileStatusNew, nil
	case "viewed":
		return FileStatusViewed, nil
	case "unknown":
		return FileStatusUnknown, nil
	default:
		return FileStatusUnknown, fmt.Errorf("invalid file status: %q", s)
	}
}
