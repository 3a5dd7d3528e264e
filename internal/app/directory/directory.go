/*
Package directory loads the static user directory and validates login credentials against it.

The directory is a JSON file of user records read once at startup. It is immutable at
runtime: logins never create or modify records, and usernames absent from the file are
accepted as anonymous identities.
*/
package directory

import (
	"encoding/json"
	"fmt"
	"os"

	"chirpd/internal/app/protocol"
	"chirpd/internal/pkg/errs"
	"chirpd/internal/pkg/logx"
)

// User is one directory record. Passwords are compared by exact equality.
type User struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Directory is the in-memory user list loaded from the directory file.
type Directory struct {
	users []User
}

// directoryFile is the on-disk shape of the user directory.
type directoryFile struct {
	Users []User `json:"users"`
}

// Load reads and parses the user directory at path. Records missing a name or
// password are skipped rather than failing the whole load.
func Load(path string) (*Directory, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read user directory %s: %w", path, err)
	}

	var parsed directoryFile
	if err := json.Unmarshal(contents, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse user directory %s: %w", path, err)
	}

	users := make([]User, 0, len(parsed.Users))
	for _, u := range parsed.Users {
		if u.Name == "" || u.Password == "" {
			logx.Warn("Skipping incomplete user directory record", "name", u.Name)
			continue
		}
		logx.Debug("Loaded directory user", "name", u.Name)
		users = append(users, u)
	}

	return &Directory{users: users}, nil
}

// NameExists reports whether name has a directory record.
func (d *Directory) NameExists(name string) bool {
	for _, u := range d.users {
		if u.Name == name {
			return true
		}
	}
	return false
}

// CheckCredentials validates a Usr login command and returns the username to log
// in as. A name with a directory record requires an exactly matching password;
// an unknown name is accepted as-is as an anonymous identity, with no record
// created. Any other command variant fails with ErrNotLoginCommand.
func (d *Directory) CheckCredentials(command protocol.Command) (string, error) {
	login, ok := command.(protocol.Usr)
	if !ok {
		return "", errs.NewError(errs.ErrNotLoginCommand)
	}

	for _, u := range d.users {
		if u.Name == login.Name {
			if u.Password == login.Password {
				return login.Name, nil
			}
			return "", errs.NewError(errs.ErrBadCredentials)
		}
	}

	// Unregistered username: accept the connection anonymously.
	return login.Name, nil
}
