/*
Package protocol defines the command vocabulary and the fixed-size frame codec
exchanged between chirpd clients and the server.

This file defines the Command variant set. The set is closed: every command that can
travel over the wire is one of the types below, and dispatch sites switch over them
exhaustively, treating any other type as a programming error.
*/
package protocol

import "strings"

// GroupPrefix marks a target name as a group address. Any target that does not
// begin with it is routed as a direct message. This convention is load-bearing
// throughout routing.
const GroupPrefix = "#"

// IsGroupName reports whether name addresses a group.
func IsGroupName(name string) bool {
	return strings.HasPrefix(name, GroupPrefix)
}

// Command is the closed set of wire commands. Exactly one Command travels per frame.
type Command interface {
	// Opcode returns the wire opcode identifying the variant.
	Opcode() Opcode
}

// Ok acknowledges a successful operation.
type Ok struct{}

// Err notifies the peer of a failure.
type Err struct {
	// Message is the client-facing failure description.
	Message string
}

// Usr carries login credentials. It is only meaningful during the
// authentication phase of a session.
type Usr struct {
	Name     string
	Password string
}

// Msg is a chat message. A Target beginning with GroupPrefix addresses a group,
// any other Target addresses a single user.
type Msg struct {
	Sender string
	Target string
	Text   string
}

// Join requests membership in a group (names starting with GroupPrefix).
// Joining a direct user is reserved and currently has no effect.
type Join struct {
	Name string
}

// Leave requests removal from a group.
type Leave struct {
	Name string
}

// ListOp distinguishes the roster entry operations carried by ListUsr frames.
type ListOp byte

const (
	// ListOpNone marks a ListUsr frame used as a roster request; the operation is ignored.
	ListOpNone ListOp = 0

	// ListOpAdd marks a ListUsr response frame carrying one group member.
	ListOpAdd ListOp = 1
)

// ListUsr is a group roster entry. As a request the Op and Username fields are
// ignored; as a response the server emits one frame per member with Op set to
// ListOpAdd.
type ListUsr struct {
	Group    string
	Op       ListOp
	Username string
}

func (Ok) Opcode() Opcode      { return OpOk }
func (Err) Opcode() Opcode     { return OpErr }
func (Usr) Opcode() Opcode     { return OpUsr }
func (Msg) Opcode() Opcode     { return OpMsg }
func (Join) Opcode() Opcode    { return OpJoin }
func (Leave) Opcode() Opcode   { return OpLeave }
func (ListUsr) Opcode() Opcode { return OpListUsr }
