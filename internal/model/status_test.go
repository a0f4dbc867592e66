package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminalStatus(t *testing.T) {
	for _, s := range []string{StatusCompleted, StatusFailed, StatusCancelled} {
		assert.True(t, IsTerminalStatus(s), s)
	}
	for _, s := range []string{StatusPending, StatusRunning, "", "unknown"} {
		assert.False(t, IsTerminalStatus(s), s)
	}
}
