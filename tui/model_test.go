package tui

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/tilize"
)

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestQuitKeysCancelToken(t *testing.T) {
	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	}
	for _, key := range keys {
		t.Run(key.String(), func(t *testing.T) {
			token := tilize.NewCancellationToken()
			m := NewModel("test", 10, token)

			next, cmd := m.Update(key)
			assert.True(t, token.Cancelled())
			assert.True(t, next.(Model).Cancelled())
			assert.True(t, isQuit(t, cmd))
			assert.Contains(t, next.View(), "cancelling")
		})
	}
}

func TestOtherKeysIgnored(t *testing.T) {
	token := tilize.NewCancellationToken()
	m := NewModel("test", 10, token)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.False(t, token.Cancelled())
	assert.Nil(t, cmd)
}

func TestFrameAndProgress(t *testing.T) {
	m := NewModel("mosaic", 4, tilize.NewCancellationToken())

	next, _ := m.Update(FrameMsg{View: "FRAME\n"})
	next, _ = next.Update(ProgressMsg{Done: 3, Total: 4})

	view := next.View()
	assert.Contains(t, view, "FRAME")
	assert.Contains(t, view, "3/4 tiles")
	assert.Contains(t, view, "mosaic")
}

func TestDoneQuits(t *testing.T) {
	m := NewModel("test", 1, tilize.NewCancellationToken())
	res := &tilize.Result{Outcome: tilize.Outcome{Status: tilize.StatusSuccess}}

	next, cmd := m.Update(DoneMsg{Result: res})
	require.True(t, isQuit(t, cmd))
	assert.True(t, next.(Model).Finished())
	assert.Contains(t, next.View(), "success")

	next, _ = m.Update(DoneMsg{Err: errors.New("boom")})
	assert.Contains(t, next.View(), "boom")
}

type captureSender struct {
	msgs []tea.Msg
}

func (c *captureSender) Send(msg tea.Msg) {
	c.msgs = append(c.msgs, msg)
}

func TestPresenterSendsFrame(t *testing.T) {
	var s captureSender
	buf, err := tilize.NewPixelBuffer(2, 2)
	require.NoError(t, err)

	require.NoError(t, NewPresenter(&s, 0).Present(buf))
	require.Len(t, s.msgs, 1)
	frame, ok := s.msgs[0].(FrameMsg)
	require.True(t, ok)
	assert.Equal(t, 1, strings.Count(frame.View, "\n"))
}

// blockingSender accepts messages only when the test reads from it.
type blockingSender struct {
	msgs chan tea.Msg
}

func (b *blockingSender) Send(msg tea.Msg) {
	b.msgs <- msg
}

func returnsWithin(t *testing.T, d time.Duration, f func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		f()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("call did not return within %v", d)
	}
}

func TestSessionProgressDoesNotWaitForEventLoop(t *testing.T) {
	// The program is never run, so nothing drains its message channel.
	sess := NewSession("test", 100, tilize.NewCancellationToken(),
		tea.WithInput(nil), tea.WithOutput(io.Discard))
	t.Cleanup(sess.program.Kill)

	returnsWithin(t, time.Second, func() {
		for i := 1; i <= 100; i++ {
			sess.Progress(i, 100)
		}
	})
}

func TestMailboxKeepsLatest(t *testing.T) {
	sender := &blockingSender{msgs: make(chan tea.Msg)}
	mb := newMailbox(sender)

	returnsWithin(t, time.Second, func() {
		for i := 1; i <= 50; i++ {
			mb.Send(ProgressMsg{Done: i, Total: 50})
		}
	})

	// The forwarder holds at most one older message; the queued one is the
	// newest.
	var last ProgressMsg
	closed := make(chan struct{})
	go func() {
		mb.close()
		close(closed)
	}()
	for {
		select {
		case msg := <-sender.msgs:
			last = msg.(ProgressMsg)
			continue
		case <-closed:
		}
		break
	}
	assert.Equal(t, 50, last.Done)
}

func TestProgressNeverMovesBackwards(t *testing.T) {
	m := NewModel("test", 10, tilize.NewCancellationToken())
	next, _ := m.Update(ProgressMsg{Done: 6, Total: 10})
	next, _ = next.Update(ProgressMsg{Done: 5, Total: 10})
	assert.Contains(t, next.View(), "6/10 tiles")
}
