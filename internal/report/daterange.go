package report

import "time"

// Preset is a date-range shortcut for delta reports. Anything other than
// all_time puts the report into delta mode.
type Preset string

const (
	PresetAllTime    Preset = "all_time"
	PresetLast7Days  Preset = "last_7_days"
	PresetLast30Days Preset = "last_30_days"
	PresetLast90Days Preset = "last_90_days"
	PresetYTD        Preset = "ytd"
	PresetCustom     Preset = "custom"
)

func (p Preset) Valid() bool {
	switch p {
	case PresetAllTime, PresetLast7Days, PresetLast30Days, PresetLast90Days, PresetYTD, PresetCustom:
		return true
	}
	return false
}

// DateRange is the caller's window selection. Start/End are only read for
// the custom preset.
type DateRange struct {
	Preset Preset     `json:"preset"`
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
}

// DeltaMode reports whether this selection calls for the delta engine at all.
// all_time (and an unset preset) means plain aggregation.
func (r DateRange) DeltaMode() bool {
	return r.Preset != "" && r.Preset != PresetAllTime
}

// Window resolves the concrete start/end instants. ok is false when no window
// applies: the all_time preset, or a custom range with either side still
// pending (no computation runs until both dates are present).
func (r DateRange) Window(now time.Time) (start, end time.Time, ok bool) {
	switch r.Preset {
	case PresetLast7Days:
		return now.AddDate(0, 0, -7), now, true
	case PresetLast30Days:
		return now.AddDate(0, 0, -30), now, true
	case PresetLast90Days:
		return now.AddDate(0, 0, -90), now, true
	case PresetYTD:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), now, true
	case PresetCustom:
		if r.Start == nil || r.End == nil {
			return time.Time{}, time.Time{}, false
		}
		return *r.Start, *r.End, true
	default:
		return time.Time{}, time.Time{}, false
	}
}
