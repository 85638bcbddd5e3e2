package ui

// KeyMode represents the keybinding mode for the browser.
type KeyMode string

const (
	// KeyModeVim enables vim-style keybindings (j/k navigation, / search).
	KeyModeVim KeyMode = "vim"
	// KeyModeEmacs enables emacs-style keybindings (ctrl/alt chords).
	KeyModeEmacs KeyMode = "emacs"
	// KeyModeFunction disables single-key shortcuts, uses function keys only.
	KeyModeFunction KeyMode = "function"
)

// DefaultKeyMode is the default keybinding mode.
const DefaultKeyMode = KeyModeVim

// ValidKeyModes lists all valid key modes for validation.
var ValidKeyModes = []KeyMode{KeyModeVim, KeyModeEmacs, KeyModeFunction}

// IsValidKeyMode checks if a key mode string is valid.
func IsValidKeyMode(mode string) bool {
	for _, m := range ValidKeyModes {
		if string(m) == mode {
			return true
		}
	}
	return false
}

// Action represents a browser action triggered by a keybinding.
type Action string

const (
	ActionNone     Action = ""
	ActionDown     Action = "down"
	ActionUp       Action = "up"
	ActionTop      Action = "top"
	ActionBottom   Action = "bottom"
	ActionSearch   Action = "search"
	ActionDetail   Action = "detail"
	ActionBack     Action = "back"
	ActionCopy     Action = "copy"
	ActionHelp     Action = "help"
	ActionQuit     Action = "quit"
	ActionPendingG Action = "pending_g" // waiting for second key in gg sequence
)

// VimKeyBindings maps keys to actions for vim mode.
var VimKeyBindings = map[string]Action{
	"j":     ActionDown,
	"k":     ActionUp,
	"g":     ActionPendingG,
	"G":     ActionBottom,
	"/":     ActionSearch,
	"l":     ActionDetail,
	"enter": ActionDetail,
	"h":     ActionBack,
	"y":     ActionCopy,
	"?":     ActionHelp,
	"q":     ActionQuit,
}

// EmacsKeyBindings maps keys to actions for emacs mode.
var EmacsKeyBindings = map[string]Action{
	"ctrl+n": ActionDown,
	"ctrl+p": ActionUp,
	"alt+<":  ActionTop,
	"alt+>":  ActionBottom,
	"ctrl+s": ActionSearch,
	"enter":  ActionDetail,
	"ctrl+b": ActionBack,
	"alt+w":  ActionCopy,
	"f1":     ActionHelp, // ctrl+h is backspace in terminals
	"ctrl+q": ActionQuit,
}

// FunctionKeyBindings maps keys to actions for function mode. Arrow keys go
// to the grid directly and are not listed here.
var FunctionKeyBindings = map[string]Action{
	"f1":    ActionHelp,
	"f3":    ActionSearch,
	"f5":    ActionCopy,
	"f10":   ActionQuit,
	"enter": ActionDetail,
	"esc":   ActionBack,
}

// ResolveKey maps a key press to an action for the given mode. pending is
// the previously buffered key for multi-key sequences (vim gg); the returned
// string is the new buffer value.
func ResolveKey(mode KeyMode, keyStr, pending string) (Action, string) {
	var bindings map[string]Action
	switch mode {
	case KeyModeEmacs:
		bindings = EmacsKeyBindings
	case KeyModeFunction:
		bindings = FunctionKeyBindings
	default:
		bindings = VimKeyBindings
	}

	if mode == KeyModeVim && pending == "g" {
		if keyStr == "g" {
			return ActionTop, ""
		}
		// Pending g is consumed; the key may still have its own binding.
		pending = ""
	}

	action, ok := bindings[keyStr]
	if !ok {
		return ActionNone, pending
	}
	if action == ActionPendingG {
		return ActionNone, "g"
	}
	return action, pending
}
