package utils

import (
	"os"
	"os/user"
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// GetHostname returns the system hostname.
func GetHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return hostname, nil
}

// Actor returns "user@host" for the current process, using "unknown" for
// anything that cannot be resolved.
func Actor() string {
	username, err := GetUsername()
	if err != nil || username == "" {
		username = "unknown"
	}
	hostname, err := GetHostname()
	if err != nil || hostname == "" {
		hostname = "unknown"
	}
	return username + "@" + hostname
}
