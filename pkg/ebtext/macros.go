package ebtext

import (
	"bytes"
	"fmt"
	"strings"
)

// Macro argument shapes. A flag argument is one little-endian 2-byte
// value; byte arguments decode independently as small integers.
const (
	macNone = iota
	macFlag
	macOne
	macHide // one byte argument followed by a fixed 0x06
	macTwo
)

type macroShape struct {
	pattern []byte // control code plus any fixed operand bytes
	kind    int
}

// macroShapes is checked in order: longer fixed prefixes come before
// shorter ones sharing a control code (1F EC FF before 1F EC), matching
// the engine's dispatch.
var macroShapes = []macroShape{
	{[]byte{0x0d, 0x00}, macNone},
	{[]byte{0x0d, 0x01}, macNone},
	{[]byte{0x0f}, macNone},
	{[]byte{0x12}, macNone},
	{[]byte{0x13}, macNone},
	{[]byte{0x14}, macNone},
	{[]byte{0x18, 0x00}, macNone},
	{[]byte{0x18, 0x04}, macNone},
	{[]byte{0x18, 0x06}, macNone},
	{[]byte{0x18, 0x0a}, macNone},
	{[]byte{0x1b, 0x00}, macNone},
	{[]byte{0x1b, 0x01}, macNone},
	{[]byte{0x1b, 0x04}, macNone},
	{[]byte{0x1c, 0x04}, macNone},
	{[]byte{0x1c, 0x0d}, macNone},
	{[]byte{0x1c, 0x0e}, macNone},
	{[]byte{0x1c, 0x0f}, macNone},
	{[]byte{0x1f, 0x01, 0x02}, macNone},
	{[]byte{0x1f, 0x03}, macNone},
	{[]byte{0x1f, 0x05}, macNone},
	{[]byte{0x1f, 0x06}, macNone},
	{[]byte{0x1f, 0x30}, macNone},
	{[]byte{0x1f, 0x31}, macNone},
	{[]byte{0x1f, 0xb0}, macNone},

	{[]byte{0x04}, macFlag},
	{[]byte{0x05}, macFlag},
	{[]byte{0x07}, macFlag},

	{[]byte{0x0b}, macOne},
	{[]byte{0x0c}, macOne},
	{[]byte{0x0e}, macOne},
	{[]byte{0x10}, macOne},
	{[]byte{0x18, 0x01}, macOne},
	{[]byte{0x18, 0x03}, macOne},
	{[]byte{0x1c, 0x00}, macOne},
	{[]byte{0x1c, 0x01}, macOne},
	{[]byte{0x1c, 0x02}, macOne},
	{[]byte{0x1c, 0x05}, macOne},
	{[]byte{0x1c, 0x06}, macOne},
	{[]byte{0x1c, 0x12}, macOne},
	{[]byte{0x1f, 0x00, 0x00}, macOne},
	{[]byte{0x1f, 0x02}, macOne},
	{[]byte{0x1f, 0x04}, macOne},
	{[]byte{0x1f, 0x07}, macOne},
	{[]byte{0x1f, 0x11}, macOne},
	{[]byte{0x1f, 0x12}, macOne},
	{[]byte{0x1f, 0x1d}, macOne},
	{[]byte{0x1f, 0x21}, macOne},
	{[]byte{0x1f, 0x41}, macOne},
	{[]byte{0x1f, 0x67}, macOne},
	{[]byte{0x1f, 0xe5}, macOne},
	{[]byte{0x1f, 0xec, 0xff}, macOne},

	{[]byte{0x1f, 0xeb}, macHide},

	{[]byte{0x18, 0x05}, macTwo},
	{[]byte{0x1d, 0x00}, macTwo},
	{[]byte{0x1d, 0x01}, macTwo},
	{[]byte{0x1d, 0x05}, macTwo},
	{[]byte{0x1e, 0x00}, macTwo},
	{[]byte{0x1e, 0x01}, macTwo},
	{[]byte{0x1e, 0x02}, macTwo},
	{[]byte{0x1e, 0x03}, macTwo},
	{[]byte{0x1e, 0x04}, macTwo},
	{[]byte{0x1e, 0x05}, macTwo},
	{[]byte{0x1e, 0x06}, macTwo},
	{[]byte{0x1e, 0x07}, macTwo},
	{[]byte{0x1e, 0x08}, macTwo},
	{[]byte{0x1e, 0x0a}, macTwo},
	{[]byte{0x1e, 0x0b}, macTwo},
	{[]byte{0x1e, 0x0c}, macTwo},
	{[]byte{0x1e, 0x0d}, macTwo},
	{[]byte{0x1e, 0x0e}, macTwo},
	{[]byte{0x1f, 0x13}, macTwo},
	{[]byte{0x1f, 0x20}, macTwo},
	{[]byte{0x1f, 0x71}, macTwo},
	{[]byte{0x1f, 0x81}, macTwo},
	{[]byte{0x1f, 0xec}, macTwo},
}

// macroTargets maps a shape's fixed bytes (hex form) to its call
// template. Kept separate from macroShapes: a shape the dispatcher
// recognizes without a target here is a catalogue drift bug, reported
// as a hard error rather than skipped.
var macroTargets = map[string]string{
	"0D 00":    "{rtoarg}",
	"0D 01":    "{ctoarg}",
	"0F":       "{inc}",
	"12":       "{clearline}",
	"13":       "{wait}",
	"14":       "{prompt}",
	"18 00":    "{window_closetop}",
	"18 04":    "{window_closeall}",
	"18 06":    "{window_clear}",
	"18 0A":    "{open_wallet}",
	"1B 00":    "{store_registers}",
	"1B 01":    "{load_registers}",
	"1B 04":    "{swap}",
	"1C 04":    "{open_hp}",
	"1C 0D":    "{user}",
	"1C 0E":    "{target}",
	"1C 0F":    "{delta}",
	"1F 01 02": "{music_stop}",
	"1F 03":    "{music_resume}",
	"1F 05":    "{music_switching_off}",
	"1F 06":    "{music_switching_on}",
	"1F 30":    "{font_normal}",
	"1F 31":    "{font_saturn}",
	"1F B0":    "{save}",

	"04": "{set(flag %d)}",
	"05": "{unset(flag %d)}",
	"07": "{isset(flag %d)}",

	"0B":       "{result_is(%d)}",
	"0C":       "{result_not(%d)}",
	"0E":       "{counter(%d)}",
	"10":       "{pause(%d)}",
	"18 01":    "{window_open(%d)}",
	"18 03":    "{window_switch(%d)}",
	"1C 00":    "{text_color(%d)}",
	"1C 01":    "{stat(%d)}",
	"1C 02":    "{name(%d)}",
	"1C 05":    "{itemname(%d)}",
	"1C 06":    "{teleportname(%d)}",
	"1C 12":    "{psiname(%d)}",
	"1F 00 00": "{music(%d)}",
	"1F 02":    "{sound(%d)}",
	"1F 04":    "{text_blips(%d)}",
	"1F 07":    "{music_effect(%d)}",
	"1F 11":    "{party_add(%d)}",
	"1F 12":    "{party_remove(%d)}",
	"1F 1D":    "{hide_char_float(%d)}",
	"1F 21":    "{warp(%d)}",
	"1F 41":    "{event(%d)}",
	"1F 67":    "{hotspot_off(%d)}",
	"1F E5":    "{lock_movement(%d)}",
	"1F EC FF": "{show_party(%d)}",

	"1F EB": "{hide_char(%d)}",

	"18 05": "{text_pos(%d, %d)}",
	"1D 00": "{give(%d, %d)}",
	"1D 01": "{take(%d, %d)}",
	"1D 05": "{hasitem(%d, %d)}",
	"1E 00": "{heal_percent(%d, %d)}",
	"1E 01": "{hurt_percent(%d, %d)}",
	"1E 02": "{heal(%d, %d)}",
	"1E 03": "{hurt(%d, %d)}",
	"1E 04": "{recoverpp_percent(%d, %d)}",
	"1E 05": "{consumepp_percent(%d, %d)}",
	"1E 06": "{recoverpp(%d, %d)}",
	"1E 07": "{consumepp(%d, %d)}",
	"1E 08": "{change_level(%d, %d)}",
	"1E 0A": "{boost_iq(%d, %d)}",
	"1E 0B": "{boost_guts(%d, %d)}",
	"1E 0C": "{boost_speed(%d, %d)}",
	"1E 0D": "{boost_vitality(%d, %d)}",
	"1E 0E": "{boost_luck(%d, %d)}",
	"1F 13": "{char_direction(%d, %d)}",
	"1F 20": "{teleport(%d, %d)}",
	"1F 71": "{learnpsi(%d, %d)}",
	"1F 81": "{usable(%d, %d)}",
	"1F EC": "{show_char(%d, %d)}",
}

// parseGroup turns a bracket group's inner text back into bytes.
// Groups carrying label expressions or the spaced columnar rendering
// are not byte groups and return false.
func parseGroup(group string) ([]byte, bool) {
	if group == "" || group[0] == ' ' || strings.ContainsAny(group, "{}") {
		return nil, false
	}
	fields := strings.Split(group, " ")
	out := make([]byte, len(fields))
	for i, f := range fields {
		if len(f) != 2 {
			return nil, false
		}
		var v int
		if _, err := fmt.Sscanf(f, "%x", &v); err != nil {
			return nil, false
		}
		out[i] = byte(v)
	}
	return out, true
}

// macroExpand rewrites one control-code group into its named call form,
// if the catalogue covers it. Unknown codes are left alone; a shape
// with no target is a fatal internal inconsistency.
func macroExpand(group string) (string, bool, error) {
	full, ok := parseGroup(group)
	if !ok {
		return "", false, nil
	}
	for _, sh := range macroShapes {
		if !bytes.HasPrefix(full, sh.pattern) {
			continue
		}
		rest := full[len(sh.pattern):]
		var args []any
		switch sh.kind {
		case macNone:
			if len(rest) != 0 {
				continue
			}
		case macFlag:
			if len(rest) != 2 {
				continue
			}
			args = append(args, int(rest[0])|int(rest[1])<<8)
		case macOne:
			if len(rest) != 1 {
				continue
			}
			args = append(args, int(rest[0]))
		case macHide:
			if len(rest) != 2 || rest[1] != 0x06 {
				continue
			}
			args = append(args, int(rest[0]))
		case macTwo:
			if len(rest) != 2 {
				continue
			}
			args = append(args, int(rest[0]), int(rest[1]))
		}
		key := hexJoin(sh.pattern[0], sh.pattern[1:])
		tmpl, ok := macroTargets[key]
		if !ok {
			return "", false, fmt.Errorf("macro shape %s has no target", key)
		}
		return fmt.Sprintf(tmpl, args...), true, nil
	}
	return "", false, nil
}
