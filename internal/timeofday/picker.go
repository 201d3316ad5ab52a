// ABOUTME: Segmented AM/PM, hour, minute time picker state machine
// ABOUTME: Emits the encoded HH:MM only when the picker becomes complete

package timeofday

import "fmt"

// State is the fill level of a Picker.
type State int

const (
	StateEmpty State = iota
	StatePartial
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePartial:
		return "partial"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// MinuteOptions are the minutes offered for new input.
var MinuteOptions = []string{"00", "10", "20", "30", "40", "50"}

// HourOptions are the 12-hour values offered by the hour selector.
var HourOptions = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

// Picker holds the three selectors. OnChange receives the encoded HH:MM each
// time the picker enters Complete, and on every change of value while Complete.
type Picker struct {
	OnChange func(hhmm string)

	seg     Segments
	emitted string
}

// NewPicker returns an empty picker.
func NewPicker(onChange func(string)) *Picker {
	return &Picker{OnChange: onChange}
}

// Load pre-fills the selectors from a stored value without emitting.
// Load("") resets the picker to empty.
func (p *Picker) Load(hhmm string) {
	p.seg = Decode(hhmm)
	p.emitted, _ = p.seg.Encode()
}

// State reports Empty, Partial or Complete.
func (p *Picker) State() State {
	switch p.seg.Count() {
	case 0:
		return StateEmpty
	case 3:
		return StateComplete
	default:
		return StatePartial
	}
}

// Segments returns the current selector values.
func (p *Picker) Segments() Segments {
	return p.seg
}

// Value returns the encoded time when complete.
func (p *Picker) Value() (string, bool) {
	return p.seg.Encode()
}

// SetPeriod selects AM or PM. PeriodUnset clears it.
func (p *Picker) SetPeriod(period Period) {
	p.seg.Period = period
	p.changed()
}

// SetHour selects a 12-hour value; 0 clears it.
func (p *Picker) SetHour(hour int) error {
	if hour < 0 || hour > 12 {
		return fmt.Errorf("%w: hour %d", ErrInvalidTime, hour)
	}
	p.seg.Hour = hour
	p.changed()
	return nil
}

// SetMinute selects a two-digit minute; "" clears it.
func (p *Picker) SetMinute(minute string) error {
	if minute != "" && !validMinute(minute) {
		return fmt.Errorf("%w: minute %q", ErrInvalidTime, minute)
	}
	p.seg.Minute = minute
	p.changed()
	return nil
}

// MinuteChoices returns MinuteOptions plus the current minute when a loaded
// value is not on the 10-minute grid.
func (p *Picker) MinuteChoices() []string {
	cur := p.seg.Minute
	if cur == "" {
		return MinuteOptions
	}
	for _, m := range MinuteOptions {
		if m == cur {
			return MinuteOptions
		}
	}
	out := make([]string, 0, len(MinuteOptions)+1)
	inserted := false
	for _, m := range MinuteOptions {
		if !inserted && cur < m {
			out = append(out, cur)
			inserted = true
		}
		out = append(out, m)
	}
	if !inserted {
		out = append(out, cur)
	}
	return out
}

func (p *Picker) changed() {
	if p.State() != StateComplete {
		p.emitted = ""
		return
	}
	v, ok := p.seg.Encode()
	if !ok || v == p.emitted {
		return
	}
	p.emitted = v
	if p.OnChange != nil {
		p.OnChange(v)
	}
}
