package signal

import (
	"fmt"
	"strings"
)

// KeyEvent is a key press or release delivered by the host.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
}

// KeyCombo is one key plus an exact set of modifiers.
type KeyCombo struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
}

// ParseKeyCombo reads combos such as "ctrl+alt+i" or "shift+F1".
func ParseKeyCombo(s string) (KeyCombo, error) {
	var combo KeyCombo
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if i == len(parts)-1 {
			if part == "" || isModifier(part) {
				return KeyCombo{}, fmt.Errorf("key combo %q: missing key", s)
			}
			combo.Key = part
			break
		}
		switch part {
		case "ctrl", "control":
			combo.Ctrl = true
		case "alt", "option":
			combo.Alt = true
		case "shift":
			combo.Shift = true
		case "meta", "cmd", "super":
			combo.Meta = true
		default:
			return KeyCombo{}, fmt.Errorf("key combo %q: unknown modifier %q", s, part)
		}
	}
	return combo, nil
}

func isModifier(s string) bool {
	switch s {
	case "ctrl", "control", "alt", "option", "shift", "meta", "cmd", "super":
		return true
	}
	return false
}

// Matches reports whether ev is this combo with exactly these modifiers held.
func (c KeyCombo) Matches(ev KeyEvent) bool {
	return strings.EqualFold(c.Key, ev.Key) &&
		c.Ctrl == ev.Ctrl && c.Alt == ev.Alt && c.Shift == ev.Shift && c.Meta == ev.Meta
}

func (c KeyCombo) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "ctrl")
	}
	if c.Alt {
		parts = append(parts, "alt")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	if c.Meta {
		parts = append(parts, "meta")
	}
	return strings.Join(append(parts, c.Key), "+")
}

// Toggle flips a binary state.
func Toggle(v bool) bool {
	return !v
}

type keyToggle struct {
	name    string
	combo   KeyCombo
	target  *bool
	changed *Observable[bool]
}
