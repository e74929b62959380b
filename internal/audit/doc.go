// Package audit records custody of the relay shared key.
//
// Every operation that changes or reveals the shared key (set-key, export,
// import, logout) appends an entry to a per-user audit log. Entries never
// contain the key itself.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) at:
//
//	$XDG_DATA_HOME/tunnelrelay/audit.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Actor (user@host) and installation id
//   - Operation name
//   - Operation-specific details (output path, import source, etc.)
//
// # Usage
//
//	entry := audit.NewEntry(audit.OpExport, prefs.Installation.ID)
//	entry.OutputPath = outputPath
//	audit.Log(paths.AuditLogPath(), entry)
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error.
package audit
