package main

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestEventPumpDeliversMessages(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	logChannel <- LogEvent{Msg: "one status line"}

	msg := waitForEvent(done)()
	assert.Equal(t, LogEvent{Msg: "one status line"}, msg)
}

func TestEventPumpReleasesOnShutdown(t *testing.T) {
	done := make(chan struct{})
	got := make(chan tea.Msg, 1)

	go func() { got <- waitForEvent(done)() }()
	close(done)

	select {
	case msg := <-got:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("pump still parked on the channel after shutdown")
	}
}
