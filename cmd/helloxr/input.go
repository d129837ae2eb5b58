package main

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/plus3/helloxr/signal"
)

type modifiers struct {
	ctrl, alt, shift, meta bool
}

// keyEvent names an ebiten key the way key combos and key triggers spell it.
// Modifier keys on their own are not forwarded.
func keyEvent(k ebiten.Key, mods modifiers) (signal.KeyEvent, bool) {
	if isModifierKey(k) {
		return signal.KeyEvent{}, false
	}
	return signal.KeyEvent{
		Key:   keyName(k),
		Ctrl:  mods.ctrl,
		Alt:   mods.alt,
		Shift: mods.shift,
		Meta:  mods.meta,
	}, true
}

func keyName(k ebiten.Key) string {
	name := k.String()
	if digit, ok := strings.CutPrefix(name, "Digit"); ok {
		return digit
	}
	return strings.ToLower(name)
}

func isModifierKey(k ebiten.Key) bool {
	switch k {
	case ebiten.KeyControl, ebiten.KeyControlLeft, ebiten.KeyControlRight,
		ebiten.KeyAlt, ebiten.KeyAltLeft, ebiten.KeyAltRight,
		ebiten.KeyShift, ebiten.KeyShiftLeft, ebiten.KeyShiftRight,
		ebiten.KeyMeta, ebiten.KeyMetaLeft, ebiten.KeyMetaRight:
		return true
	}
	return false
}
