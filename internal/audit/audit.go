package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/tunnelrelay/internal/utils"
)

// Operation names recorded in the audit log.
const (
	OpSetKey = "set-key"
	OpExport = "export"
	OpImport = "import"
	OpLogout = "logout"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp      string `json:"ts"`    // RFC3339 with microseconds.
	Actor          string `json:"actor"` // user@host performing the action.
	InstallationID string `json:"installation,omitempty"`
	Operation      string `json:"op"`

	// Optional fields depending on operation.
	SettingsPath string `json:"settings_path,omitempty"`
	OutputPath   string `json:"output_path,omitempty"`   // For export.
	Source       string `json:"source,omitempty"`        // For import.
	KeyIncluded  bool   `json:"key_included,omitempty"`  // For export/import.
	PluginsCount int    `json:"plugins_count,omitempty"` // For import.
}

// NewEntry returns an entry for op with the actor and installation filled in.
func NewEntry(op, installationID string) Entry {
	return Entry{
		Actor:          utils.Actor(),
		InstallationID: installationID,
		Operation:      op,
	}
}

// Log appends an entry to the audit log at logPath.
// Failures are ignored. Operations should not fail just because audit
// logging failed.
func Log(logPath string, entry Entry) {
	if logPath == "" {
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the audit log at logPath.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(logPath string) ([]Entry, error) {
	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
