package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// sender is the part of *tea.Program the bridge needs.
type sender interface {
	Send(msg tea.Msg)
}

// ConfirmBridge turns the confirm modal into a blocking yes/no function that
// can be handed to state.WithConfirmer before the program exists.
type ConfirmBridge struct {
	mu   sync.Mutex
	p    sender
	done chan struct{}
	once sync.Once
}

// NewConfirmBridge returns a bridge that declines until attached.
func NewConfirmBridge() *ConfirmBridge {
	return &ConfirmBridge{done: make(chan struct{})}
}

func (b *ConfirmBridge) attach(p sender) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.p = p
}

// close releases pending and future Confirm calls with "no".
func (b *ConfirmBridge) close() {
	b.once.Do(func() { close(b.done) })
}

// Confirm shows prompt in a modal and waits for the answer. It must not be
// called from the program's Update loop.
func (b *ConfirmBridge) Confirm(prompt string) bool {
	b.mu.Lock()
	p := b.p
	b.mu.Unlock()
	if p == nil {
		return false
	}

	reply := make(chan bool, 1)
	select {
	case <-b.done:
		return false
	default:
	}
	p.Send(confirmRequestMsg{prompt: prompt, reply: reply})

	select {
	case yes := <-reply:
		return yes
	case <-b.done:
		return false
	}
}

type confirmRequestMsg struct {
	prompt string
	reply  chan<- bool
}
