package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wbrown/tilize"
	"github.com/wbrown/tilize/display"
)

// Sender delivers a message to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Presenter renders frames as ANSI art and sends them to the program.
type Presenter struct {
	sender Sender
	cols   int
}

var _ display.Presenter = (*Presenter)(nil)

// NewPresenter returns a presenter that fits frames into cols columns.
func NewPresenter(s Sender, cols int) *Presenter {
	return &Presenter{sender: s, cols: cols}
}

// Present implements display.Presenter.
func (p *Presenter) Present(frame *tilize.PixelBuffer) error {
	p.sender.Send(FrameMsg{View: display.RenderANSI(frame, p.cols)})
	return nil
}

// mailbox forwards messages to a Sender from its own goroutine. Send never
// blocks: a message still queued when a newer one arrives is replaced, so a
// slow event loop only ever sees the latest state.
type mailbox struct {
	ch   chan tea.Msg
	done chan struct{}
}

func newMailbox(s Sender) *mailbox {
	mb := &mailbox{ch: make(chan tea.Msg, 1), done: make(chan struct{})}
	go func() {
		defer close(mb.done)
		for msg := range mb.ch {
			s.Send(msg)
		}
	}()
	return mb
}

// Send implements Sender.
func (mb *mailbox) Send(msg tea.Msg) {
	for {
		select {
		case mb.ch <- msg:
			return
		default:
		}
		select {
		case <-mb.ch:
		default:
		}
	}
}

// close stops accepting messages and waits until the queued one, if any,
// has been forwarded.
func (mb *mailbox) close() {
	close(mb.ch)
	<-mb.done
}

// Session ties a bubbletea program to one engine run. Frames and progress
// reach the program through mailboxes, so workers never wait on the event
// loop.
type Session struct {
	program  *tea.Program
	token    *tilize.CancellationToken
	frames   *mailbox
	progress *mailbox
}

// NewSession creates the program for a run of total tiles.
func NewSession(title string, total int, token *tilize.CancellationToken, opts ...tea.ProgramOption) *Session {
	p := tea.NewProgram(NewModel(title, total, token), opts...)
	return &Session{
		program:  p,
		token:    token,
		frames:   newMailbox(p),
		progress: newMailbox(p),
	}
}

// Presenter returns a display presenter feeding this session.
func (s *Session) Presenter(cols int) *Presenter {
	return NewPresenter(s.frames, cols)
}

// Progress is a tilize.ProgressFunc that updates the progress bar. It
// returns immediately even when the program is busy.
func (s *Session) Progress(done, total int) {
	s.progress.Send(ProgressMsg{Done: done, Total: total})
}

// Run starts work in the background and runs the program until work
// finishes or the user quits. It always waits for work to return.
func (s *Session) Run(work func() (*tilize.Result, error)) (*tilize.Result, error) {
	type outcome struct {
		res *tilize.Result
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := work()
		// The last frame and count must land before DoneMsg quits the program.
		s.frames.close()
		s.progress.close()
		s.program.Send(DoneMsg{Result: res, Err: err})
		ch <- outcome{res, err}
	}()

	if _, err := s.program.Run(); err != nil {
		s.token.Cancel()
		<-ch
		return nil, fmt.Errorf("preview failed: %w", err)
	}
	o := <-ch
	return o.res, o.err
}
