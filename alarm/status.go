package alarm

import (
	_ "embed"
	"encoding/json"
	"slices"
)

//go:embed alarm_status.json
var statusTableJSON []byte

// statusTable maps backend alarm messages to armed zones. The backend only
// reports free-text messages, so recognition is by exact match.
type statusTable struct {
	Internal struct {
		Day   messageSet `json:"day"`
		Night messageSet `json:"night"`
		Total messageSet `json:"total"`
	} `json:"internal"`
	External messageSet `json:"external"`
}

type messageSet struct {
	Alarm []string `json:"alarm"`
}

// Flags reports which alarm zones are armed.
type Flags struct {
	InternalDay   bool `json:"internal_day"`
	InternalNight bool `json:"internal_night"`
	InternalTotal bool `json:"internal_total"`
	External      bool `json:"external"`
}

// Armed reports whether any zone is armed.
func (f Flags) Armed() bool {
	return f.InternalDay || f.InternalNight || f.InternalTotal || f.External
}

var defaultTable = mustLoadTable(statusTableJSON)

func mustLoadTable(raw []byte) statusTable {
	var t statusTable
	if err := json.Unmarshal(raw, &t); err != nil {
		panic("invalid embedded alarm status table: " + err.Error())
	}
	return t
}

// mapMessage translates a backend status message into zone flags. An
// unrecognized or empty message maps to all-disarmed.
func (t statusTable) mapMessage(message string) Flags {
	if message == "" {
		return Flags{}
	}
	return Flags{
		InternalDay:   slices.Contains(t.Internal.Day.Alarm, message),
		InternalNight: slices.Contains(t.Internal.Night.Alarm, message),
		InternalTotal: slices.Contains(t.Internal.Total.Alarm, message),
		External:      slices.Contains(t.External.Alarm, message),
	}
}
