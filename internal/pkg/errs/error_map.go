/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
Err frames returned to clients and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the message template and, where the
// error can surface over the admin HTTP API, an HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: Connection Admission Errors
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many connections. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Routing and Registry Errors
	ErrUserNotFound:   {Code: ErrUserNotFound, Message: "Target %s not connected or does not exist."},
	ErrGroupNotFound:  {Code: ErrGroupNotFound, Message: "Group %s does not exist."},
	ErrMemberNotFound: {Code: ErrMemberNotFound, Message: "User %s is not a member of %s."},
	ErrNotGroupMember: {Code: ErrNotGroupMember, Message: "Sender %s is not a member of %s."},
	ErrMailboxClosed:  {Code: ErrMailboxClosed, Message: "Cannot transmit data to %s: mailbox closed."},
	ErrMailboxFull:    {Code: ErrMailboxFull, Message: "Cannot transmit data to %s: mailbox full."},
	ErrNotRoutable:    {Code: ErrNotRoutable, Message: "Wrong command type. Only MSG commands can be sent."},
	ErrNotAGroupName:  {Code: ErrNotAGroupName, Message: "'%s' is not a group name."},

	// 3xxx: Authentication and Session Errors
	ErrAlreadyLoggedIn: {Code: ErrAlreadyLoggedIn, Message: "A user with the same credentials is already logged in."},
	ErrBadCredentials:  {Code: ErrBadCredentials, Message: "Wrong credentials."},
	ErrNotLoginCommand: {Code: ErrNotLoginCommand, Message: "Incorrect log in command."},
	ErrReservedName:    {Code: ErrReservedName, Message: "%q is not a valid username."},

	// 4xxx: Codec and Transport Errors
	ErrBadOpcode:    {Code: ErrBadOpcode, Message: "Unknown command opcode %#x."},
	ErrFieldTooLong: {Code: ErrFieldTooLong, Message: "Field %q does not fit the wire frame."},
	ErrBadFrameSize: {Code: ErrBadFrameSize, Message: "Frame must be exactly %d bytes, got %d."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
