package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusStringRoundTrip(t *testing.T) {
	for _, status := range []ProjectStatus{ProjectStatusActive, ProjectStatusCompleted, ProjectStatusArchived} {
		parsed, err := ParseProjectStatus(status.String())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	for _, status := range []StepStatus{StepStatusUpcoming, StepStatusCurrent, StepStatusCompleted} {
		parsed, err := ParseStepStatus(status.String())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	for _, status := range []VersionStatus{VersionStatusPending, VersionStatusApproved, VersionStatusRejected} {
		parsed, err := ParseVersionStatus(status.String())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	for _, status := range []FileStatus{FileStatusNew, FileStatusViewed} {
		parsed, err := ParseFileStatus(status.String())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}
}

func TestParseStatusInvalid(t *testing.T) {
	_, err := ParseProjectStatus("paused")
	assert.Error(t, err)

	_, err = ParseStepStatus("skipped")
	assert.Error(t, err)

	_, err = ParseVersionStatus("withdrawn")
	assert.Error(t, err)

	_, err = ParseFileStatus("deleted")
	assert.Error(t, err)
}
