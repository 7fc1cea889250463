package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// answeringSender replies to confirm requests like a user pressing a key.
type answeringSender struct {
	answer bool
	got    []string
}

func (s *answeringSender) Send(msg tea.Msg) {
	if req, ok := msg.(confirmRequestMsg); ok {
		s.got = append(s.got, req.prompt)
		req.reply <- s.answer
	}
}

// silentSender never answers.
type silentSender struct{}

func (silentSender) Send(tea.Msg) {}

func TestConfirmBridge_UnattachedDeclines(t *testing.T) {
	b := NewConfirmBridge()
	if b.Confirm("delete?") {
		t.Fatalf("Confirm = true without a program, want false")
	}
}

func TestConfirmBridge_ReturnsAnswer(t *testing.T) {
	for _, answer := range []bool{true, false} {
		b := NewConfirmBridge()
		s := &answeringSender{answer: answer}
		b.attach(s)

		if got := b.Confirm("delete?"); got != answer {
			t.Fatalf("Confirm = %v, want %v", got, answer)
		}
		if len(s.got) != 1 || s.got[0] != "delete?" {
			t.Fatalf("prompts = %#v", s.got)
		}
	}
}

func TestConfirmBridge_CloseReleasesWaiter(t *testing.T) {
	b := NewConfirmBridge()
	b.attach(silentSender{})

	result := make(chan bool, 1)
	go func() { result <- b.Confirm("delete?") }()

	b.close()
	select {
	case got := <-result:
		if got {
			t.Fatalf("Confirm = true after close, want false")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Confirm did not return after close")
	}

	// Closing twice is safe and later calls decline immediately.
	b.close()
	if b.Confirm("again?") {
		t.Fatalf("Confirm = true after close, want false")
	}
}
