package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/keybridge/config"
	"github.com/lixenwraith/keybridge/host"
	"github.com/lixenwraith/keybridge/logging"
	"github.com/lixenwraith/keybridge/status"
	"github.com/lixenwraith/keybridge/translator"
	"github.com/lixenwraith/keybridge/widget"
)

type fakeBell struct {
	rings int
	muted bool
}

func (b *fakeBell) Ring() bool {
	if b.muted {
		return false
	}
	b.rings++
	return true
}

func (b *fakeBell) SetMuted(muted bool) bool {
	prev := b.muted
	b.muted = muted
	return prev
}

type fixture struct {
	script *host.Script
	reg    *status.Registry
	bell   *fakeBell
	app    *app
}

func newFixture(t *testing.T, screen tcell.Screen) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Field.Width = 10
	cfg.Field.EmacsLineKeys = false
	cfg.Field.Command = 9

	f := &fixture{script: host.NewScript(), reg: status.NewRegistry(), bell: &fakeBell{}}
	tr := translator.New(f.script, translator.WithRegistry(f.reg), translator.WithLogger(logging.Discard()))

	var view *screenView
	if screen != nil {
		view = newScreenView(screen, widget.NewCellMetrics(), f.reg)
	}
	f.app = newApp(logging.Discard(), tr, f.reg, f.bell, view, cfg)
	return f
}

func (f *fixture) typeText(s string) {
	for _, c := range []byte(s) {
		f.script.PushKey(host.KeyCode(c), 0, uint16(c))
		f.script.PushKeyUp(host.KeyCode(c), 0)
	}
}

func (f *fixture) metric(key string) int64 {
	return f.reg.Ints.Get(key).Load()
}

func TestAppSubmitClearsField(t *testing.T) {
	f := newFixture(t, nil)
	f.typeText("hi")
	f.script.PushKey(host.KeyReturn, 0, 13)
	f.app.step()

	assert.Equal(t, []string{"hi"}, f.app.submitted)
	assert.Equal(t, "", f.app.field.Text())
	assert.Equal(t, 0, f.app.field.CaretPos())
	assert.Equal(t, int64(1), f.metric(metricSubmitted))
	assert.Equal(t, int64(2), f.metric(metricFieldChanges))
	assert.Zero(t, f.bell.rings)
}

func TestAppRingsOnUnhandledKey(t *testing.T) {
	f := newFixture(t, nil)
	// ctrl+a types nothing when emacs line keys are off
	f.script.PushKey(host.KeyA, host.FlagCtrl, 1)
	f.script.PushKey(host.KeyKP5, 0, '5')
	f.app.step()

	assert.Equal(t, 2, f.bell.rings)
	assert.Equal(t, int64(2), f.metric(metricUnhandled))
	assert.Equal(t, "", f.app.field.Text())
}

func TestAppEscapeRequestsExit(t *testing.T) {
	f := newFixture(t, nil)
	f.script.PushKey(host.KeyEscape, 0, 27)
	f.app.step()

	select {
	case <-f.app.tr.Exit().Done():
	default:
		t.Fatal("escape should request exit")
	}
	assert.True(t, f.app.tr.Exit().WantExit())
}

func TestAppRunReturnsOnQuit(t *testing.T) {
	f := newFixture(t, nil)
	f.script.Push(host.Event{Type: host.EventQuit})

	done := make(chan struct{})
	go func() {
		f.app.run(time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after quit")
	}
	assert.False(t, f.app.tr.Exit().CheckDynamicResources())
}

func TestAppConfigReload(t *testing.T) {
	f := newFixture(t, nil)

	cfg := config.Default()
	cfg.Field.Width = 3
	cfg.Sound.Enabled = false

	// Only the newest pending config is kept
	f.app.onConfigChange(config.Default())
	f.app.onConfigChange(cfg)
	require.Len(t, f.app.reloads, 1)
	f.app.applyConfig(<-f.app.reloads)

	assert.Equal(t, 3, f.app.field.Width())
	assert.True(t, f.bell.muted)

	f.script.PushKey(host.KeyA, host.FlagCtrl, 1)
	f.app.step()
	assert.Zero(t, f.bell.rings, "muted bell stays silent")
}

func TestAppSendCommandFiltersForeignCommands(t *testing.T) {
	f := newFixture(t, nil)
	f.app.SendCommand(1, 0)
	assert.Zero(t, f.metric(metricFieldChanges))
	f.app.SendCommand(9, 0)
	assert.Equal(t, int64(1), f.metric(metricFieldChanges))
}
