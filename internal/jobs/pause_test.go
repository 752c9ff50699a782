package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// SetGlobalPause/SetArchivePaused persist through public.system_config and
// are exercised by a testcontainers-gated integration suite rather than
// here. These unit tests exercise only the in-memory read path.

func TestPauseStateDefaultsToUnpaused(t *testing.T) {
	p := NewPauseState(nil)
	assert.False(t, p.IsGloballyPaused())
	assert.False(t, p.IsArchivePaused("public"))
}

func TestPauseStateArchiveSetIsIndependentPerSchema(t *testing.T) {
	p := NewPauseState(nil)
	p.archives["tenant_a"] = struct{}{}
	assert.True(t, p.IsArchivePaused("tenant_a"))
	assert.False(t, p.IsArchivePaused("tenant_b"))
}

func TestPauseStateGlobalFlagIsLockFree(t *testing.T) {
	p := NewPauseState(nil)
	p.global.Store(true)
	assert.True(t, p.IsGloballyPaused())
}
