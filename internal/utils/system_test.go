package utils

import (
	"os"
	"strings"
	"testing"
)

func TestGetUsername(t *testing.T) {
	username, err := GetUsername()
	if err != nil {
		t.Fatalf("GetUsername failed: %v", err)
	}
	if username == "" {
		t.Error("Expected non-empty username")
	}
}

func TestGetHostname(t *testing.T) {
	hostname, err := GetHostname()
	if err != nil {
		t.Fatalf("GetHostname failed: %v", err)
	}
	if hostname == "" {
		t.Error("Expected non-empty hostname")
	}
}

func TestActor(t *testing.T) {
	actor := Actor()
	parts := strings.Split(actor, "@")
	if len(parts) < 2 || parts[0] == "" || parts[len(parts)-1] == "" {
		t.Errorf("Expected user@host, got %q", actor)
	}
}

func TestFormatList(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	got := FormatList([]string{"cors", "header-logger"})
	want := "\n    - 'cors'\n    - 'header-logger'\n"
	if got != want {
		t.Errorf("FormatList() = %q, want %q", got, want)
	}
}

func TestFormatKeyValues(t *testing.T) {
	got := FormatKeyValues(map[string]string{"origin": "*", "level": "debug"})
	want := "      level = debug\n      origin = *\n"
	if got != want {
		t.Errorf("FormatKeyValues() = %q, want %q", got, want)
	}
}

func TestReadAllNonEmpty(t *testing.T) {
	data, err := ReadAllNonEmpty(strings.NewReader(`{"version":2}`))
	if err != nil {
		t.Fatalf("ReadAllNonEmpty failed: %v", err)
	}
	if string(data) != `{"version":2}` {
		t.Errorf("Unexpected data %q", data)
	}

	if _, err := ReadAllNonEmpty(strings.NewReader("")); err == nil {
		t.Error("Expected error for empty input")
	}
}
