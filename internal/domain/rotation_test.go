package domain

import (
	"errors"
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 6, 15, hour, min, 0, 0, time.UTC)
}

func testUnit(pluginID, name string) *ContentUnit {
	return &ContentUnit{
		PluginID: pluginID,
		Name:     name,
		Settings: map[string]any{},
		Refresh:  RefreshPolicy{IntervalSec: 300},
	}
}

// --- Window Tests ---

func TestRotation_IsActive_DayWindow(t *testing.T) {
	r := NewRotation("Morning", "08:00", "12:00")

	tests := []struct {
		clock string
		want  bool
	}{
		{"08:00", true},  // start inclusive
		{"10:30", true},
		{"11:59", true},
		{"12:00", false}, // end exclusive
		{"07:59", false},
		{"23:00", false},
	}

	for _, tt := range tests {
		if got := r.IsActive(tt.clock); got != tt.want {
			t.Errorf("IsActive(%q) = %v, want %v", tt.clock, got, tt.want)
		}
	}
}

func TestRotation_IsActive_CrossMidnight(t *testing.T) {
	r := NewRotation("Night", "22:00", "06:00")

	tests := []struct {
		clock string
		want  bool
	}{
		{"22:00", true},
		{"23:30", true},
		{"00:00", true},
		{"02:00", true},
		{"05:59", true},
		{"06:00", false},
		{"14:00", false},
		{"21:59", false},
	}

	for _, tt := range tests {
		if got := r.IsActive(tt.clock); got != tt.want {
			t.Errorf("IsActive(%q) = %v, want %v", tt.clock, got, tt.want)
		}
	}
}

func TestRotation_IsActive_FullDay(t *testing.T) {
	r := NewRotation("Always", "", "")

	if r.StartTime != "00:00" || r.EndTime != EndOfDay {
		t.Fatalf("defaults = %q-%q, want 00:00-24:00", r.StartTime, r.EndTime)
	}

	for _, clock := range []string{"00:00", "12:00", "23:59"} {
		if !r.IsActive(clock) {
			t.Errorf("IsActive(%q) = false, want true for full-day window", clock)
		}
	}
}

func TestRotation_IsActive_InvalidInput(t *testing.T) {
	r := NewRotation("Day", "08:00", "12:00")

	// Malformed current time fails closed
	for _, clock := range []string{"25:00", "12:60", "invalid", ""} {
		if r.IsActive(clock) {
			t.Errorf("IsActive(%q) = true, want false for invalid input", clock)
		}
	}

	// Malformed window bound fails closed too
	broken := NewRotation("Broken", "99:99", "12:00")
	if broken.IsActive("10:00") {
		t.Error("IsActive with invalid start_time should be false")
	}
}

func TestRotation_Priority(t *testing.T) {
	wide := NewRotation("Wide", "00:00", "24:00")
	narrow := NewRotation("Narrow", "09:00", "13:00")

	wp, err := wide.Priority()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	np, err := narrow.Priority()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wp != 1440 {
		t.Errorf("full-day priority = %d, want 1440", wp)
	}
	if np != 240 {
		t.Errorf("narrow priority = %d, want 240", np)
	}
	if np >= wp {
		t.Error("narrow window should have smaller (stronger) priority value")
	}
}

func TestRotation_Priority_CrossMidnightIsNegative(t *testing.T) {
	// Duration of a wrap window comes out negative; it still sorts
	// ahead of day windows, which is the documented tie-break order.
	night := NewRotation("Night", "22:00", "06:00")

	p, err := night.Priority()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != -960 {
		t.Errorf("cross-midnight priority = %d, want -960", p)
	}
}

func TestRotation_Priority_InvalidWindow(t *testing.T) {
	r := NewRotation("Broken", "08:00", "bogus")
	if _, err := r.Priority(); err == nil {
		t.Error("expected error for invalid end_time")
	}
}

// --- Cursor Tests ---

func TestRotation_NextUnit(t *testing.T) {
	r := NewRotation("R", "", "")
	r.Plugins = []*ContentUnit{testUnit("clock", "a"), testUnit("clock", "b"), testUnit("news", "c")}

	// First call starts at index 0
	if u := r.NextUnit(); u.Name != "a" {
		t.Fatalf("first NextUnit = %q, want a", u.Name)
	}
	if u := r.NextUnit(); u.Name != "b" {
		t.Fatalf("second NextUnit = %q, want b", u.Name)
	}
	if u := r.NextUnit(); u.Name != "c" {
		t.Fatalf("third NextUnit = %q, want c", u.Name)
	}
	// Wraps around
	if u := r.NextUnit(); u.Name != "a" {
		t.Fatalf("fourth NextUnit = %q, want a (wrap)", u.Name)
	}
}

func TestRotation_NextUnit_Empty(t *testing.T) {
	r := NewRotation("Empty", "", "")
	if u := r.NextUnit(); u != nil {
		t.Errorf("NextUnit on empty rotation = %v, want nil", u)
	}
	if r.Cursor != nil {
		t.Error("cursor should stay nil on empty rotation")
	}
}

func TestRotation_FindDueUnit_CursorStaysWhenCurrentDue(t *testing.T) {
	now := at(10, 0)
	r := NewRotation("R", "", "")
	r.Plugins = []*ContentUnit{testUnit("clock", "a"), testUnit("clock", "b")}
	idx := 0
	r.Cursor = &idx
	// Unit under the cursor is due (never refreshed)

	u := r.FindDueUnit(now, false)
	if u == nil || u.Name != "a" {
		t.Fatalf("FindDueUnit = %v, want unit a", u)
	}
	if r.Cursor == nil || *r.Cursor != 0 {
		t.Errorf("cursor = %v, want unchanged 0", r.Cursor)
	}
}

func TestRotation_FindDueUnit_AdvancesToDueUnit(t *testing.T) {
	now := at(10, 0)
	recent := now.Add(-10 * time.Second)
	stale := now.Add(-time.Hour)

	a := testUnit("clock", "a")
	a.MarkRefreshed(recent)
	b := testUnit("clock", "b")
	b.MarkRefreshed(recent)
	c := testUnit("news", "c")
	c.MarkRefreshed(stale) // only c is due

	r := NewRotation("R", "", "")
	r.Plugins = []*ContentUnit{a, b, c}
	idx := 0
	r.Cursor = &idx

	u := r.FindDueUnit(now, false)
	if u == nil || u.Name != "c" {
		t.Fatalf("FindDueUnit = %v, want unit c", u)
	}
	if r.Cursor == nil || *r.Cursor != 2 {
		t.Errorf("cursor = %v, want 2", r.Cursor)
	}
}

func TestRotation_FindDueUnit_NothingDue(t *testing.T) {
	now := at(10, 0)
	recent := now.Add(-10 * time.Second)

	a := testUnit("clock", "a")
	a.MarkRefreshed(recent)
	b := testUnit("clock", "b")
	b.MarkRefreshed(recent)

	r := NewRotation("R", "", "")
	r.Plugins = []*ContentUnit{a, b}
	idx := 1
	r.Cursor = &idx

	if u := r.FindDueUnit(now, false); u != nil {
		t.Fatalf("FindDueUnit = %v, want nil", u)
	}
	if r.Cursor == nil || *r.Cursor != 1 {
		t.Errorf("cursor = %v, want untouched 1", r.Cursor)
	}
}

func TestRotation_FindDueUnit_GlobalOverride(t *testing.T) {
	now := at(10, 0)
	recent := now.Add(-10 * time.Second)

	a := testUnit("clock", "a")
	a.MarkRefreshed(recent)
	b := testUnit("clock", "b")
	b.MarkRefreshed(recent)

	r := NewRotation("R", "", "")
	r.Plugins = []*ContentUnit{a, b}
	idx := 0
	r.Cursor = &idx

	// Global cycle forces a result even when nobody is due
	u := r.FindDueUnit(now, true)
	if u == nil || u.Name != "a" {
		t.Fatalf("FindDueUnit with override = %v, want current unit a", u)
	}
}

func TestRotation_FindDueUnit_NilCursorScansFromStart(t *testing.T) {
	now := at(10, 0)
	r := NewRotation("R", "", "")
	r.Plugins = []*ContentUnit{testUnit("clock", "a"), testUnit("clock", "b")}

	u := r.FindDueUnit(now, false)
	if u == nil || u.Name != "a" {
		t.Fatalf("FindDueUnit = %v, want unit a", u)
	}
	if r.Cursor == nil || *r.Cursor != 0 {
		t.Errorf("cursor = %v, want 0", r.Cursor)
	}
}

func TestRotation_FindDueUnit_OutOfRangeCursor(t *testing.T) {
	now := at(10, 0)

	// A stored document may carry any current_plugin_index;
	// an out-of-range cursor must behave like an unset one.
	for _, stale := range []int{-3, -1, 2, 99} {
		r := NewRotation("R", "", "")
		r.Plugins = []*ContentUnit{testUnit("clock", "a"), testUnit("clock", "b")}
		idx := stale
		r.Cursor = &idx

		u := r.FindDueUnit(now, false)
		if u == nil || u.Name != "a" {
			t.Fatalf("cursor %d: FindDueUnit = %v, want unit a", stale, u)
		}
		if r.Cursor == nil || *r.Cursor != 0 {
			t.Errorf("cursor %d: cursor after find = %v, want 0", stale, r.Cursor)
		}
	}
}

func TestRotation_NextUnit_OutOfRangeCursor(t *testing.T) {
	r := NewRotation("R", "", "")
	r.Plugins = []*ContentUnit{testUnit("clock", "a"), testUnit("clock", "b")}
	idx := -5
	r.Cursor = &idx

	u := r.NextUnit()
	if u == nil || u.Name != "a" {
		t.Fatalf("NextUnit = %v, want unit a", u)
	}
	if r.Cursor == nil || *r.Cursor != 0 {
		t.Errorf("cursor = %v, want 0", r.Cursor)
	}
}

func TestRotation_FindDueUnit_Empty(t *testing.T) {
	r := NewRotation("Empty", "", "")
	if u := r.FindDueUnit(at(10, 0), true); u != nil {
		t.Errorf("FindDueUnit on empty rotation = %v, want nil", u)
	}
}

// --- Unit management Tests ---

func TestRotation_AddUnit_Duplicate(t *testing.T) {
	r := NewRotation("R", "", "")

	if err := r.AddUnit(testUnit("clock", "a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.AddUnit(testUnit("clock", "a"))
	if !errors.Is(err, ErrExists) {
		t.Errorf("duplicate AddUnit error = %v, want ErrExists", err)
	}
	// Same plugin, different instance is fine
	if err := r.AddUnit(testUnit("clock", "b")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRotation_DeleteUnit_ResetsCursor(t *testing.T) {
	r := NewRotation("R", "", "")
	r.Plugins = []*ContentUnit{testUnit("clock", "a"), testUnit("clock", "b")}
	idx := 1
	r.Cursor = &idx

	if err := r.DeleteUnit("clock", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Cursor != nil {
		t.Errorf("cursor = %v, want nil after it pointed past the list", r.Cursor)
	}

	err := r.DeleteUnit("clock", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteUnit error = %v, want ErrNotFound", err)
	}
}

func TestRotation_Clone_Independent(t *testing.T) {
	r := NewRotation("R", "08:00", "12:00")
	r.Plugins = []*ContentUnit{testUnit("clock", "a")}
	idx := 0
	r.Cursor = &idx

	c := r.Clone()
	c.Plugins[0].Name = "changed"
	*c.Cursor = 5

	if r.Plugins[0].Name != "a" {
		t.Error("clone mutation leaked into original plugin list")
	}
	if *r.Cursor != 0 {
		t.Error("clone mutation leaked into original cursor")
	}
}
