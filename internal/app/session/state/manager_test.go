package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManager_Lifecycle(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := New("sess-1")

	assert.Equal(t, "sess-1", m.GetSessionID())
	assert.Equal(t, PhaseWaiting, m.GetPhase())
	assert.Zero(t, m.Uptime(start))

	m.Start(start)
	assert.Equal(t, PhaseWaiting, m.GetPhase())

	m.RecordKey('3', start.Add(time.Second))
	m.RecordKey('5', start.Add(2*time.Second))
	assert.Equal(t, PhaseActive, m.GetPhase())
	assert.Equal(t, 3*time.Second, m.Uptime(start.Add(3*time.Second)))

	m.Terminate(start.Add(4 * time.Second))
	m.Terminate(start.Add(9 * time.Second))
	m.RecordKey('1', start.Add(10*time.Second))

	info := m.Snapshot()
	assert.Equal(t, PhaseTerminated, info.Phase)
	assert.Equal(t, 2, info.KeyCount)
	assert.Equal(t, rune('5'), rune(info.LastKey))
	assert.Equal(t, start.Add(4*time.Second), info.EndTime)
	assert.Equal(t, 4*time.Second, m.Uptime(start.Add(time.Hour)))
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "waiting", PhaseWaiting.String())
	assert.Equal(t, "active", PhaseActive.String())
	assert.Equal(t, "terminated", PhaseTerminated.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
