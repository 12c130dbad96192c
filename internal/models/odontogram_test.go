package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidToothNumber(t *testing.T) {
	valid := []int{11, 18, 21, 28, 31, 38, 41, 48, 51, 55, 61, 71, 81, 85}
	for _, n := range valid {
		assert.Truef(t, ValidToothNumber(n), "%d should be accepted", n)
	}

	invalid := []int{0, 1, 10, 19, 20, 29, 30, 39, 40, 49, 50, 59, 60, 86, 90, 111, -11}
	for _, n := range invalid {
		assert.Falsef(t, ValidToothNumber(n), "%d should be rejected", n)
	}
}

func TestValidToothFace(t *testing.T) {
	for _, f := range []string{FaceOcclusal, FaceBuccal, FaceLingual, FaceMesial, FaceDistal} {
		assert.Truef(t, ValidToothFace(f), "%s should be a known face", f)
	}
	assert.False(t, ValidToothFace("incisal"))
	assert.False(t, ValidToothFace(""))
}

func TestValidTreatmentStatus(t *testing.T) {
	assert.True(t, ValidTreatmentStatus(StatusPlanned))
	assert.True(t, ValidTreatmentStatus(StatusInProgress))
	assert.True(t, ValidTreatmentStatus(StatusCompleted))
	assert.False(t, ValidTreatmentStatus("done"))
	assert.False(t, ValidTreatmentStatus(""))
}

func TestCanTransitionStatus(t *testing.T) {
	// Forward moves, including skipping a step.
	assert.True(t, CanTransitionStatus(StatusPlanned, StatusInProgress))
	assert.True(t, CanTransitionStatus(StatusInProgress, StatusCompleted))
	assert.True(t, CanTransitionStatus(StatusPlanned, StatusCompleted))

	// Staying put is a no-op, not a regression.
	assert.True(t, CanTransitionStatus(StatusCompleted, StatusCompleted))
	assert.True(t, CanTransitionStatus(StatusPlanned, StatusPlanned))

	// Backwards moves are rejected.
	assert.False(t, CanTransitionStatus(StatusCompleted, StatusInProgress))
	assert.False(t, CanTransitionStatus(StatusCompleted, StatusPlanned))
	assert.False(t, CanTransitionStatus(StatusInProgress, StatusPlanned))

	// Unknown statuses never transition.
	assert.False(t, CanTransitionStatus("done", StatusCompleted))
	assert.False(t, CanTransitionStatus(StatusPlanned, "done"))
}
