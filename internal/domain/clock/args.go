package clock

import (
	"math"
	"strconv"
	"strings"
)

// Argument names accepted from the UI bridge.
const (
	ArgMatchTime        = "matchTime"
	ArgPeriod           = "period"
	ArgIsPaused         = "isPaused"
	ArgAlertTimeSeconds = "alertTimeSeconds"
)

// StartArgs holds the optional arguments of a start command.
// A nil field means the argument was absent or malformed.
type StartArgs struct {
	MatchTime *int
	Period    *int
	Paused    *bool
	AlertLead *int
}

// UpdateArgs holds the optional arguments of an update command.
type UpdateArgs struct {
	MatchTime *int
	Period    *int
	Paused    *bool
}

// Apply returns the running state described by the arguments, with every
// missing value replaced by its documented fallback.
func (a StartArgs) Apply() State {
	return State{
		MatchTimeSeconds: intOr(a.MatchTime, DefaultMatchTimeSeconds, 0),
		Period:           intOr(a.Period, DefaultPeriod, 1),
		Paused:           boolOr(a.Paused, false),
		AlertLeadSeconds: intOr(a.AlertLead, DefaultAlertLeadSeconds, 0),
		Running:          true,
	}
}

// Apply overwrites the fields of s with the arguments, falling back to the
// same defaults a start command uses.
func (a UpdateArgs) Apply(s State) State {
	s.MatchTimeSeconds = intOr(a.MatchTime, DefaultMatchTimeSeconds, 0)
	s.Period = intOr(a.Period, DefaultPeriod, 1)
	s.Paused = boolOr(a.Paused, false)

	return s
}

// ParseStartArgs extracts start arguments from a loosely typed map.
func ParseStartArgs(values map[string]any) StartArgs {
	return StartArgs{
		MatchTime: lookupInt(values, ArgMatchTime),
		Period:    lookupInt(values, ArgPeriod),
		Paused:    lookupBool(values, ArgIsPaused),
		AlertLead: lookupInt(values, ArgAlertTimeSeconds),
	}
}

// ParseUpdateArgs extracts update arguments from a loosely typed map.
func ParseUpdateArgs(values map[string]any) UpdateArgs {
	return UpdateArgs{
		MatchTime: lookupInt(values, ArgMatchTime),
		Period:    lookupInt(values, ArgPeriod),
		Paused:    lookupBool(values, ArgIsPaused),
	}
}

// Int returns a pointer to v, for building arguments in code.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for building arguments in code.
func Bool(v bool) *bool { return &v }

// intOr dereferences v, using fallback when v is nil or below minimum.
func intOr(v *int, fallback, minimum int) int {
	if v == nil || *v < minimum {
		return fallback
	}

	return *v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}

	return *v
}

// IntArg reads a whole number argument the same way command arguments are read.
func IntArg(values map[string]any, key string) (int, bool) {
	v := lookupInt(values, key)
	if v == nil {
		return 0, false
	}

	return *v, true
}

// lookupInt accepts whole numbers as float64 (JSON/structpb), ints and numeric strings.
func lookupInt(values map[string]any, key string) *int {
	raw, ok := values[key]
	if !ok || raw == nil {
		return nil
	}

	switch v := raw.(type) {
	case int:
		return Int(v)
	case int32:
		return Int(int(v))
	case int64:
		return Int(int(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil
		}

		return Int(int(v))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}

		return Int(n)
	default:
		return nil
	}
}

func lookupBool(values map[string]any, key string) *bool {
	raw, ok := values[key]
	if !ok || raw == nil {
		return nil
	}

	switch v := raw.(type) {
	case bool:
		return Bool(v)
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil
		}

		return Bool(b)
	default:
		return nil
	}
}
