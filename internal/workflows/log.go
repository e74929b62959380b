package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/tunnelrelay/internal/audit"
	"github.com/PolarWolf314/tunnelrelay/internal/configs"
	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// LogOptions configures the log workflow.
type LogOptions struct {
	// Paths overrides the per-user directories. If nil, configs.DefaultPaths is used.
	Paths *configs.Paths

	// Limit keeps the most recent Limit entries. 0 means no limit.
	Limit int

	// Reverse lists the most recent entry first.
	Reverse bool

	// Operations is a comma-separated list of operations to keep.
	Operations string

	// Since and Until bound the entries by day, YYYY-MM-DD, inclusive.
	Since string
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	Entries []audit.Entry

	// Total is the number of entries in the log before filtering.
	Total int

	LogPath string
}

// Log reads and filters the custody audit log. It does not open the
// settings store, so it works even when the settings file is unreadable.
//
// Returns ErrInvalidDateFormat if Since or Until is not YYYY-MM-DD.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	paths := opts.Paths
	if paths == nil {
		var err error
		paths, err = configs.DefaultPaths()
		if err != nil {
			return nil, fmt.Errorf("resolving directories: %w", err)
		}
	}

	var since, until time.Time
	if opts.Since != "" {
		parsed, err := time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since must be YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		since = parsed
	}
	if opts.Until != "" {
		parsed, err := time.Parse("2006-01-02", opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until must be YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		until = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	logPath := paths.AuditLogPath()
	entries, err := audit.ReadEntries(logPath)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	result := &LogResult{Total: len(entries), LogPath: logPath}

	ops := make(map[string]bool)
	for _, op := range strings.Split(opts.Operations, ",") {
		if op = strings.ToLower(strings.TrimSpace(op)); op != "" {
			ops[op] = true
		}
	}

	var filtered []audit.Entry
	for _, e := range entries {
		if len(ops) > 0 && !ops[strings.ToLower(e.Operation)] {
			continue
		}
		if !since.IsZero() || !until.IsZero() {
			ts, ok := parseTimestamp(e.Timestamp)
			if !ok || (!since.IsZero() && ts.Before(since)) || (!until.IsZero() && ts.After(until)) {
				continue
			}
		}
		filtered = append(filtered, e)
	}

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[len(filtered)-opts.Limit:]
	}
	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	result.Entries = filtered
	return result, nil
}

func parseTimestamp(ts string) (time.Time, bool) {
	t, err := time.Parse(timestampLayout, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	return t, err == nil
}

// FormatDateTime formats an entry timestamp as YYYY-MM-DD HH:MM:SS.
func FormatDateTime(ts string) string {
	t, ok := parseTimestamp(ts)
	if !ok {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatDetails summarizes the operation-specific fields of an entry.
func FormatDetails(e audit.Entry) string {
	switch e.Operation {
	case audit.OpExport:
		details := e.OutputPath
		if details == "-" {
			details = "stdout"
		}
		if e.KeyIncluded {
			details += ", key included"
		}
		return details
	case audit.OpImport:
		details := fmt.Sprintf("%s, %d plugin(s)", e.Source, e.PluginsCount)
		if e.KeyIncluded {
			details += ", key included"
		}
		return details
	default:
		return ""
	}
}
