/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific routing, session, and transport errors both
internally within the server and in Err frames sent back to clients.
*/
package errs

// 1xxx: Connection Admission Errors
const (
	// ErrRateLimitExceeded indicates that the connection rate from a single address exceeded the set limit.
	ErrRateLimitExceeded = 1001
)

// 2xxx: Routing and Registry Errors
const (
	// ErrUserNotFound indicates that the direct-message target has no presence entry.
	ErrUserNotFound = 2101

	// ErrGroupNotFound indicates that the named group does not exist.
	ErrGroupNotFound = 2102

	// ErrMemberNotFound indicates that a user is not a member of the named group.
	ErrMemberNotFound = 2103

	// ErrNotGroupMember indicates an attempt to send to a group without being a member of it.
	ErrNotGroupMember = 2104

	// ErrMailboxClosed indicates that the target's mailbox is no longer receivable.
	ErrMailboxClosed = 2105

	// ErrMailboxFull indicates that the target's mailbox has reached its capacity.
	ErrMailboxFull = 2106

	// ErrNotRoutable indicates that a non-Msg command was handed to the routing layer.
	ErrNotRoutable = 2201

	// ErrNotAGroupName indicates that a group operation was attempted on a name without the '#' prefix.
	ErrNotAGroupName = 2202
)

// 3xxx: Authentication and Session Errors
const (
	// ErrAlreadyLoggedIn indicates that the username already has a live session.
	ErrAlreadyLoggedIn = 3001

	// ErrBadCredentials indicates that the password did not match the directory record.
	ErrBadCredentials = 3002

	// ErrNotLoginCommand indicates that a non-Usr command was passed to the credential check.
	ErrNotLoginCommand = 3003

	// ErrReservedName indicates a login attempt under a name reserved for group addressing.
	ErrReservedName = 3004
)

// 4xxx: Codec and Transport Errors
const (
	// ErrBadOpcode indicates that a frame carried an opcode outside the command vocabulary.
	ErrBadOpcode = 4001

	// ErrFieldTooLong indicates that a command field does not fit its fixed-width frame slot.
	ErrFieldTooLong = 4002

	// ErrBadFrameSize indicates that a buffer of the wrong length was handed to the codec.
	ErrBadFrameSize = 4003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
