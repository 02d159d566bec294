package progress

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swissarchive/driver"
)

func apply(t *testing.T, m barModel, statuses ...driver.UpdateStatus) barModel {
	t.Helper()
	for _, status := range statuses {
		next, _ := m.Update(statusMsg(status))
		updated, ok := next.(barModel)
		require.True(t, ok)
		m = updated
	}
	return m
}

func TestBarModelDeterminatePhase(t *testing.T) {
	m := apply(t, barModel{},
		driver.UpdateStatus{Brief: driver.Str("Archiving (tar.gz)")},
		driver.UpdateStatus{Detail: driver.Str("a.txt"), Increment: driver.Count(1), Total: driver.Count(3)},
		driver.UpdateStatus{Detail: driver.Str("b.txt"), Increment: driver.Count(1), Total: driver.Count(3)},
	)
	assert.Equal(t, "Archiving (tar.gz)", m.brief)
	assert.Equal(t, "b.txt", m.detail)
	assert.Equal(t, uint64(2), m.done)
	assert.Equal(t, uint64(3), m.total)
	assert.False(t, m.indeterminate)
}

func TestBarModelNewBriefResetsPhase(t *testing.T) {
	m := apply(t, barModel{},
		driver.UpdateStatus{Brief: driver.Str("Archiving (tar.gz)")},
		driver.UpdateStatus{Increment: driver.Count(2), Total: driver.Count(4)},
		driver.UpdateStatus{Brief: driver.Str("Compressing (tar.gz)")},
	)
	assert.Equal(t, "Compressing (tar.gz)", m.brief)
	assert.Zero(t, m.done)
	assert.Zero(t, m.total)
	assert.Empty(t, m.detail)
}

func TestBarModelIndeterminateTicksWrap(t *testing.T) {
	m := apply(t, barModel{}, driver.UpdateStatus{Brief: driver.Str("Unpacking (tar)")})
	for i := 0; i < indeterminateScale+5; i++ {
		m = apply(t, m, driver.UpdateStatus{Increment: driver.Count(1)})
	}
	assert.True(t, m.indeterminate)
	assert.Less(t, m.done, uint64(indeterminateScale))
}

func TestBarModelTotalSwitchesToDeterminate(t *testing.T) {
	m := apply(t, barModel{},
		driver.UpdateStatus{Brief: driver.Str("Extracting (zip)")},
		driver.UpdateStatus{Increment: driver.Count(1)},
		driver.UpdateStatus{Total: driver.Count(10)},
	)
	assert.False(t, m.indeterminate)
	assert.Equal(t, uint64(10), m.total)
}

func TestBarModelViewEmptyBeforeFirstBrief(t *testing.T) {
	assert.Empty(t, barModel{}.View())
}

func TestBarModelQuit(t *testing.T) {
	_, cmd := barModel{}.Update(quitMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestPlainRendererAccumulates(t *testing.T) {
	plain := NewPlain()
	updater := plain.Updater()

	updater(driver.UpdateStatus{Brief: driver.Str("Archiving (zip)")})
	updater(driver.UpdateStatus{Increment: driver.Count(1), Total: driver.Count(2)})
	updater(driver.UpdateStatus{Increment: driver.Count(1)})

	assert.Equal(t, "Archiving (zip)", plain.brief)
	assert.Equal(t, uint64(2), plain.done)
	assert.Equal(t, uint64(2), plain.total)
	plain.Stop()
}
