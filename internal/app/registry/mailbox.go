/*
Package registry contains the process-wide table of active users and group memberships.

This file defines the Mailbox, the injected-message queue owned by one session.
The receiving end belongs exclusively to that session's Peer; the sending end may
be used by any number of other sessions concurrently through the Registry.
*/
package registry

import (
	"errors"
	"sync"

	"chirpd/internal/app/protocol"
)

// Mailbox delivery failures. The Registry converts these into client-facing errors.
var (
	// ErrClosed reports that the receiving session has dropped the mailbox.
	ErrClosed = errors.New("mailbox closed")

	// ErrFull reports that the mailbox has reached its capacity.
	ErrFull = errors.New("mailbox full")
)

// DefaultMailboxCapacity bounds each session's pending-delivery queue. Once a
// stalled recipient hits this bound, further deliveries to it fail with ErrFull.
const DefaultMailboxCapacity = 256

// Mailbox is a bounded FIFO queue of commands awaiting delivery to one session.
// Put is safe for concurrent use by many senders without additional locking.
type Mailbox struct {
	ch   chan protocol.Command
	done chan struct{}
	once sync.Once
}

// NewMailbox creates a mailbox holding at most capacity pending commands.
// A capacity below 1 falls back to DefaultMailboxCapacity.
func NewMailbox(capacity int) *Mailbox {
	if capacity < 1 {
		capacity = DefaultMailboxCapacity
	}
	return &Mailbox{
		ch:   make(chan protocol.Command, capacity),
		done: make(chan struct{}),
	}
}

// Put enqueues cmd for delivery. It fails with ErrClosed once the receiving
// session has called Close, and with ErrFull when the queue is at capacity.
func (m *Mailbox) Put(cmd protocol.Command) error {
	select {
	case <-m.done:
		return ErrClosed
	default:
	}

	select {
	case m.ch <- cmd:
		return nil
	case <-m.done:
		return ErrClosed
	default:
		return ErrFull
	}
}

// Recv exposes the receiving end of the queue. Commands arrive in the order
// they were enqueued.
func (m *Mailbox) Recv() <-chan protocol.Command {
	return m.ch
}

// Close marks the mailbox as no longer receivable. It is called by the owning
// session during teardown and is safe to call more than once. Pending commands
// are discarded with the mailbox.
func (m *Mailbox) Close() {
	m.once.Do(func() {
		close(m.done)
	})
}
