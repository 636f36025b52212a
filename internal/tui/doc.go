// Package tui implements the terminal user interface using Bubble Tea.
//
// # Architecture
//
// The Model wraps a *lynx.App. The App owns every piece of domain state
// (settings, history, in-flight flag, error) and the Model only keeps view
// concerns: focus, cursor, spinner and the last status line. View reads
// App.State() on every render, so the spinner and error banner always
// reflect the state machine.
//
// # Focus
//
// The prompt input starts focused. Typing edits the prompt and enter
// submits it. esc dismisses a pending error, or moves focus to the history
// list when there is none. In the list, i or / returns to the prompt.
//
// # Async Command Pattern
//
// No blocking I/O in the UI. Operations return tea.Cmd that execute async:
//
//	generate() → generatedMsg
//	export()   → exportedMsg
//	delete()   → deletedMsg
package tui
