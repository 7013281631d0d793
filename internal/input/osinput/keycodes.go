// Copyright (c) 2026 QuickKeys Team
// QuickKeys - global hotkey credential automation
// This source code is licensed under the MIT license found in the LICENSE file.

package osinput

import (
	"fmt"

	"github.com/toeirei/quickkeys/internal/input"
)

// Virtual key codes reported by libuiohook, which gohook wraps. They are
// layout independent scan-code positions (US layout for characters).
var vcChars = map[uint16]rune{
	0x0029: '`',
	0x0002: '1', 0x0003: '2', 0x0004: '3', 0x0005: '4', 0x0006: '5',
	0x0007: '6', 0x0008: '7', 0x0009: '8', 0x000A: '9', 0x000B: '0',
	0x000C: '-', 0x000D: '=',
	0x0010: 'q', 0x0011: 'w', 0x0012: 'e', 0x0013: 'r', 0x0014: 't',
	0x0015: 'y', 0x0016: 'u', 0x0017: 'i', 0x0018: 'o', 0x0019: 'p',
	0x001A: '[', 0x001B: ']', 0x002B: '\\',
	0x001E: 'a', 0x001F: 's', 0x0020: 'd', 0x0021: 'f', 0x0022: 'g',
	0x0023: 'h', 0x0024: 'j', 0x0025: 'k', 0x0026: 'l',
	0x0027: ';', 0x0028: '\'',
	0x002C: 'z', 0x002D: 'x', 0x002E: 'c', 0x002F: 'v', 0x0030: 'b',
	0x0031: 'n', 0x0032: 'm',
	0x0033: ',', 0x0034: '.', 0x0035: '/',
}

var vcNames = map[uint16]string{
	0x0001: input.KeyEsc,
	0x000E: input.KeyBackspace,
	0x000F: input.KeyTab,
	0x001C: input.KeyEnter,
	0x0039: input.KeySpace,
	0x003A: input.KeyCapsLock,
	0x0045: input.KeyNumLock,
	0x0046: input.KeyScroll,
	0x0E37: input.KeyPrint,
	0x0E45: input.KeyPause,
	0x0E52: input.KeyInsert,
	0x0E53: input.KeyDelete,
	0x0E47: input.KeyHome,
	0x0E4F: input.KeyEnd,
	0x0E49: input.KeyPageUp,
	0x0E51: input.KeyPageDown,
	0xE048: input.KeyUp,
	0xE050: input.KeyDown,
	0xE04B: input.KeyLeft,
	0xE04D: input.KeyRight,

	// Left and right variants collapse to the generic modifier.
	0x001D: input.KeyCtrl, 0x0E1D: input.KeyCtrl,
	0x0038: input.KeyAlt, 0x0E38: input.KeyAlt,
	0x002A: input.KeyShift, 0x0036: input.KeyShift,
	0x0E5B: input.KeyCmd, 0x0E5C: input.KeyCmd,
}

func init() {
	fkeys := []uint16{
		0x003B, 0x003C, 0x003D, 0x003E, 0x003F, 0x0040, 0x0041, 0x0042,
		0x0043, 0x0044, 0x0057, 0x0058, 0x005B, 0x005C, 0x005D, 0x0063,
		0x0064, 0x0065, 0x0066, 0x0067, 0x0068, 0x0069, 0x006A, 0x006B,
	}
	for i, code := range fkeys {
		vcNames[code] = fmt.Sprintf("f%d", i+1)
	}
}

func keyFromCode(code uint16) (input.Key, bool) {
	if r, ok := vcChars[code]; ok {
		return input.Char(r), true
	}
	if n, ok := vcNames[code]; ok {
		return input.Named(n), true
	}
	return input.Key{}, false
}
