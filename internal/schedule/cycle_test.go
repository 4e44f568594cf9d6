package schedule

import (
	"testing"
)

func TestCycle_DueBeforeFirstMark(t *testing.T) {
	c, err := NewCycle(3600, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Due(at(10, 0)) {
		t.Error("cycle with no history should be due")
	}
}

func TestCycle_Interval(t *testing.T) {
	c, err := NewCycle(3600, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Mark(at(10, 0))

	if c.Due(at(10, 30)) {
		t.Error("30 minutes into a 1h cycle, should not be due")
	}
	if !c.Due(at(11, 0)) {
		t.Error("exactly 1h elapsed, should be due")
	}
	if !c.Due(at(12, 0)) {
		t.Error("2h elapsed, should be due")
	}
}

func TestCycle_Cron(t *testing.T) {
	// Top of every hour
	c, err := NewCycle(0, "0 * * * *")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Mark(at(10, 30))

	if c.Due(at(10, 45)) {
		t.Error("next cron fire is 11:00, should not be due at 10:45")
	}
	if !c.Due(at(11, 0)) {
		t.Error("cron fired at 11:00, should be due")
	}
	if !c.Due(at(11, 15)) {
		t.Error("cron fire passed, should stay due until marked")
	}

	c.Mark(at(11, 15))
	if c.Due(at(11, 30)) {
		t.Error("marked after the fire, should not be due until 12:00")
	}
}

func TestCycle_IntervalOrCron(t *testing.T) {
	// 30 minute interval plus a nightly full redraw at 03:00
	c, err := NewCycle(1800, "0 3 * * *")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Mark(at(2, 45))

	// Interval has not elapsed, but the cron fire at 03:00 has
	if !c.Due(at(3, 0)) {
		t.Error("either mode firing should make the cycle due")
	}
}

func TestCycle_InvalidCron(t *testing.T) {
	if _, err := NewCycle(0, "not a cron"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestCycle_Disabled(t *testing.T) {
	// No interval, no cron: due once, then never again
	c, err := NewCycle(0, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Mark(at(10, 0))
	if c.Due(at(23, 59)) {
		t.Error("disabled cycle should never be due after the first mark")
	}
}
