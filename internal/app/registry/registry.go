/*
Package registry contains the process-wide table of active users and group memberships.

This file defines the Registry struct, shared by every session. One mutex guards
both the presence map and the groups map together, so each operation is atomic
with respect to all other sessions.
*/
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"chirpd/internal/app/protocol"
	"chirpd/internal/pkg/errs"
	"chirpd/internal/pkg/logx"
	"chirpd/internal/pkg/metrics"
)

// Registry tracks which usernames currently have a live session and which users
// belong to which group. All methods acquire the single internal lock for their
// entire duration.
type Registry struct {
	// mu guards presence and groups together.
	mu sync.Mutex

	// presence maps a username to the sending end of that user's mailbox.
	// Invariant: at most one entry per username at any instant.
	presence map[string]*Mailbox

	// groups maps a group name to its member usernames in join order, without
	// duplicates. Group entries are created lazily and never deleted, even
	// when empty: group names persist as long-lived identifiers.
	groups map[string][]string

	logger zerolog.Logger
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		presence: make(map[string]*Mailbox),
		groups:   make(map[string][]string),
		logger:   logx.Logger().With().Str("component", "registry").Logger(),
	}
}

// Add inserts a presence entry for username. It fails with ErrAlreadyLoggedIn
// if the username already has a live session.
func (r *Registry) Add(username string, mb *Mailbox) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.presence[username]; ok {
		return errs.NewError(errs.ErrAlreadyLoggedIn)
	}
	r.presence[username] = mb
	return nil
}

// Remove deletes the presence entry for username, failing with ErrUserNotFound
// if there is none.
func (r *Registry) Remove(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.presence[username]; !ok {
		return errs.NewError(errs.ErrUserNotFound, username)
	}
	delete(r.presence, username)
	return nil
}

// JoinGroup adds username to groupName. A missing group is created with username
// as its sole member, with no notification since there is no one to notify.
// Re-joining a group the user is already in is a no-op. A genuinely new member
// is appended and the existing members are notified with a synthetic message
// whose sender and target are both the group name.
func (r *Registry) JoinGroup(groupName, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[groupName]
	if !ok {
		r.groups[groupName] = []string{username}
		r.logger.Debug().Str("group", groupName).Str("user", username).Msg("Group created")
		return nil
	}

	if slices.Contains(members, username) {
		r.logger.Debug().Str("group", groupName).Str("user", username).
			Msg("User joined a group they were already in, ignoring")
		return nil
	}

	r.groups[groupName] = append(members, username)

	notification := protocol.Msg{
		Sender: groupName,
		Target: groupName,
		Text:   fmt.Sprintf("--- user %s joined %s ---", username, groupName),
	}
	return r.sendToGroupLocked(groupName, groupName, notification)
}

// LeaveGroup removes username from groupName. It fails with ErrGroupNotFound if
// the group does not exist and ErrMemberNotFound if the user is not in it.
func (r *Registry) LeaveGroup(username, groupName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[groupName]
	if !ok {
		return errs.NewError(errs.ErrGroupNotFound, groupName)
	}

	for i, m := range members {
		if m == username {
			r.groups[groupName] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return errs.NewError(errs.ErrMemberNotFound, username, groupName)
}

// Send routes a Msg command to its target: a group multicast when the target
// carries the group prefix, otherwise a single enqueue to the target user's
// mailbox. Any other command variant fails with ErrNotRoutable.
func (r *Registry) Send(command protocol.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, ok := command.(protocol.Msg)
	if !ok {
		return errs.NewError(errs.ErrNotRoutable)
	}

	if protocol.IsGroupName(msg.Target) {
		if err := r.sendToGroupLocked(msg.Sender, msg.Target, msg); err != nil {
			return err
		}
		metrics.MessagesRouted.WithLabelValues("group").Inc()
		return nil
	}

	mb, ok := r.presence[msg.Target]
	if !ok {
		return errs.NewError(errs.ErrUserNotFound, msg.Target)
	}
	if err := r.deliver(mb, msg.Target, msg); err != nil {
		return err
	}
	metrics.MessagesRouted.WithLabelValues("direct").Inc()
	return nil
}

// SendToGroup multicasts command to every member of target except sender.
// Unless sender equals target (the internal notification path), sender must be
// a current member or the call fails with ErrNotGroupMember.
func (r *Registry) SendToGroup(sender, target string, command protocol.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sendToGroupLocked(sender, target, command)
}

// sendToGroupLocked is the multicast body; callers hold r.mu. Delivery failure
// to any member surfaces immediately: earlier deliveries are not undone and
// later members are not attempted.
func (r *Registry) sendToGroupLocked(sender, target string, command protocol.Command) error {
	members, ok := r.groups[target]
	if !ok {
		return errs.NewError(errs.ErrGroupNotFound, target)
	}

	if target != sender && !slices.Contains(members, sender) {
		return errs.NewError(errs.ErrNotGroupMember, sender, target)
	}

	for _, name := range members {
		if name == sender {
			continue
		}
		mb, ok := r.presence[name]
		if !ok {
			return errs.NewError(errs.ErrUserNotFound, name)
		}
		if err := r.deliver(mb, name, command); err != nil {
			return err
		}
	}
	return nil
}

// ListGroup returns a snapshot of the group's current member names.
func (r *Registry) ListGroup(groupName string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[groupName]
	if !ok {
		return nil, errs.NewError(errs.ErrGroupNotFound, groupName)
	}
	snapshot := make([]string, len(members))
	copy(snapshot, members)
	return snapshot, nil
}

// deliver enqueues command to mb, converting mailbox failures into client-facing errors.
func (r *Registry) deliver(mb *Mailbox, target string, command protocol.Command) error {
	err := mb.Put(command)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrClosed):
		metrics.DeliveryFailures.WithLabelValues("closed").Inc()
		return errs.NewError(errs.ErrMailboxClosed, target)
	case errors.Is(err, ErrFull):
		metrics.DeliveryFailures.WithLabelValues("full").Inc()
		return errs.NewError(errs.ErrMailboxFull, target)
	default:
		metrics.DeliveryFailures.WithLabelValues("unknown").Inc()
		return errs.NewError(errs.ErrUnknown)
	}
}

// Stats is a point-in-time view of registry state for the admin API.
type Stats struct {
	ConnectedUsers int            `json:"connectedUsers"`
	GroupCount     int            `json:"groupCount"`
	GroupSizes     map[string]int `json:"groupSizes"`
}

// Snapshot returns current connection and group counts.
func (r *Registry) Snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	sizes := make(map[string]int, len(r.groups))
	for name, members := range r.groups {
		sizes[name] = len(members)
	}
	return Stats{
		ConnectedUsers: len(r.presence),
		GroupCount:     len(r.groups),
		GroupSizes:     sizes,
	}
}
