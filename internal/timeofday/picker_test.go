// ABOUTME: Tests for the segmented time picker state machine
// ABOUTME: Verifies partial states never emit and Load pre-fills silently

package timeofday

import (
	"reflect"
	"testing"
)

type recorder struct {
	values []string
}

func (r *recorder) onChange(v string) {
	r.values = append(r.values, v)
}

func TestPicker_PartialNeverEmits(t *testing.T) {
	rec := &recorder{}
	p := NewPicker(rec.onChange)

	if p.State() != StateEmpty {
		t.Fatalf("new picker state = %v", p.State())
	}

	p.SetPeriod(PM)
	if p.State() != StatePartial {
		t.Errorf("after period state = %v, want partial", p.State())
	}
	if err := p.SetHour(2); err != nil {
		t.Fatal(err)
	}
	if len(rec.values) != 0 {
		t.Fatalf("partial picker emitted %v", rec.values)
	}

	if err := p.SetMinute("30"); err != nil {
		t.Fatal(err)
	}
	if p.State() != StateComplete {
		t.Errorf("state = %v, want complete", p.State())
	}
	if !reflect.DeepEqual(rec.values, []string{"14:30"}) {
		t.Errorf("emitted %v, want [14:30]", rec.values)
	}
}

func TestPicker_AnyOrder(t *testing.T) {
	rec := &recorder{}
	p := NewPicker(rec.onChange)

	_ = p.SetMinute("00")
	_ = p.SetHour(12)
	p.SetPeriod(AM)

	if !reflect.DeepEqual(rec.values, []string{"00:00"}) {
		t.Errorf("emitted %v, want [00:00]", rec.values)
	}
}

func TestPicker_ChangeWhileComplete(t *testing.T) {
	rec := &recorder{}
	p := NewPicker(rec.onChange)
	p.Load("09:10")

	p.SetPeriod(PM)
	_ = p.SetHour(9) // same value, no emission
	if !reflect.DeepEqual(rec.values, []string{"21:10"}) {
		t.Errorf("emitted %v, want [21:10]", rec.values)
	}
}

func TestPicker_LoadDoesNotEmit(t *testing.T) {
	rec := &recorder{}
	p := NewPicker(rec.onChange)

	p.Load("00:05")
	if len(rec.values) != 0 {
		t.Fatalf("Load emitted %v", rec.values)
	}
	if got := p.Segments(); got != (Segments{AM, 12, "05"}) {
		t.Errorf("segments = %+v", got)
	}
	if v, ok := p.Value(); !ok || v != "00:05" {
		t.Errorf("Value() = %q, %v", v, ok)
	}
}

func TestPicker_ClearMatchesFresh(t *testing.T) {
	rec := &recorder{}
	p := NewPicker(rec.onChange)
	p.Load("14:30")
	p.Load("")

	if p.State() != StateEmpty {
		t.Errorf("state after Load(\"\") = %v", p.State())
	}
	if p.Segments() != NewPicker(nil).Segments() {
		t.Errorf("cleared picker differs from fresh: %+v", p.Segments())
	}

	p.SetPeriod(PM)
	_ = p.SetHour(2)
	_ = p.SetMinute("30")
	if !reflect.DeepEqual(rec.values, []string{"14:30"}) {
		t.Errorf("emitted %v, want [14:30]", rec.values)
	}
}

func TestPicker_ClearSegmentGoesBackward(t *testing.T) {
	rec := &recorder{}
	p := NewPicker(rec.onChange)
	p.Load("14:30")

	_ = p.SetMinute("")
	if p.State() != StatePartial {
		t.Errorf("state = %v, want partial", p.State())
	}
	if _, ok := p.Value(); ok {
		t.Error("partial picker should have no value")
	}
	if len(rec.values) != 0 {
		t.Errorf("emitted %v", rec.values)
	}
}

func TestPicker_ReenterCompleteAfterLoad(t *testing.T) {
	rec := &recorder{}
	p := NewPicker(rec.onChange)
	p.Load("14:30")

	_ = p.SetMinute("")
	_ = p.SetMinute("30")
	if !reflect.DeepEqual(rec.values, []string{"14:30"}) {
		t.Errorf("emitted %v, want [14:30]", rec.values)
	}

	p.SetPeriod(PeriodUnset)
	p.SetPeriod(PM)
	if !reflect.DeepEqual(rec.values, []string{"14:30", "14:30"}) {
		t.Errorf("emitted %v, want [14:30 14:30]", rec.values)
	}
}

func TestPicker_Validation(t *testing.T) {
	p := NewPicker(nil)
	if err := p.SetHour(13); err == nil {
		t.Error("SetHour(13) should fail")
	}
	for _, m := range []string{"7", "+5", "-0", "60"} {
		if err := p.SetMinute(m); err == nil {
			t.Errorf("SetMinute(%q) should fail", m)
		}
	}
	if p.State() != StateEmpty {
		t.Errorf("invalid input changed state to %v", p.State())
	}
}

func TestPicker_MinuteChoices(t *testing.T) {
	p := NewPicker(nil)
	if !reflect.DeepEqual(p.MinuteChoices(), MinuteOptions) {
		t.Errorf("MinuteChoices() = %v", p.MinuteChoices())
	}

	p.Load("08:05")
	want := []string{"00", "05", "10", "20", "30", "40", "50"}
	if got := p.MinuteChoices(); !reflect.DeepEqual(got, want) {
		t.Errorf("MinuteChoices() = %v, want %v", got, want)
	}
}
