// Package ui formats tunnelrelay's terminal output.
//
// Formatters are semantic: pick one by what the text is, not by color.
//
//	ui.Path.Sprint(store.Path())
//	ui.Highlight.Sprint("my-connection")
//	ui.Done("Settings saved")
//	ui.KeyState(settings.HasSharedKey())
//
// Colors are dropped when NO_COLOR is set or the terminal can't show them.
// Code, Highlight, Muted and Sealed then fall back to `backticks`, 'quotes',
// (parentheses) and [brackets].
package ui
