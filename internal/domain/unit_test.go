package domain

import (
	"testing"
	"time"
)

func TestContentUnit_IsDue_NeverRefreshed(t *testing.T) {
	u := &ContentUnit{PluginID: "clock", Name: "a"}
	if !u.IsDue(at(10, 0)) {
		t.Error("unit without refresh history should be due")
	}
}

func TestContentUnit_IsDue_Interval(t *testing.T) {
	now := at(10, 0)
	u := &ContentUnit{
		PluginID: "clock",
		Name:     "a",
		Refresh:  RefreshPolicy{IntervalSec: 300},
	}

	u.MarkRefreshed(now.Add(-299 * time.Second))
	if u.IsDue(now) {
		t.Error("interval not yet elapsed, should not be due")
	}

	u.MarkRefreshed(now.Add(-300 * time.Second))
	if !u.IsDue(now) {
		t.Error("interval exactly elapsed, should be due")
	}

	u.MarkRefreshed(now.Add(-time.Hour))
	if !u.IsDue(now) {
		t.Error("interval long elapsed, should be due")
	}
}

func TestContentUnit_IsDue_NoPolicy(t *testing.T) {
	now := at(10, 0)
	u := &ContentUnit{PluginID: "clock", Name: "a"}
	u.MarkRefreshed(now.Add(-24 * time.Hour))

	if u.IsDue(now) {
		t.Error("unit with empty policy never becomes due again")
	}
}

// --- Scheduled refresh Tests ---

func TestContentUnit_IsDue_ScheduledSameDay(t *testing.T) {
	u := &ContentUnit{
		PluginID: "news",
		Name:     "daily",
		Refresh:  RefreshPolicy{Scheduled: "08:00"},
	}

	// Refreshed before the scheduled time: the within-day heuristic
	// fires regardless of the current clock.
	u.MarkRefreshed(at(6, 0))
	if !u.IsDue(at(7, 0)) {
		t.Error("last refresh before scheduled time should be due")
	}
	if !u.IsDue(at(9, 0)) {
		t.Error("scheduled time crossed since last refresh, should be due")
	}

	// Refreshed after the scheduled time on the same day
	u.MarkRefreshed(at(8, 30))
	if u.IsDue(at(9, 0)) {
		t.Error("already refreshed after today's scheduled time, should not be due")
	}
}

func TestContentUnit_IsDue_ScheduledCrossDay(t *testing.T) {
	u := &ContentUnit{
		PluginID: "news",
		Name:     "daily",
		Refresh:  RefreshPolicy{Scheduled: "08:00"},
	}

	yesterday := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	u.MarkRefreshed(yesterday)

	// Next day, before the scheduled time: not due yet
	if u.IsDue(at(7, 0)) {
		t.Error("previous day refresh, scheduled time not yet reached")
	}
	// Next day, at/after the scheduled time: due
	if !u.IsDue(at(8, 0)) {
		t.Error("previous day refresh, scheduled time reached, should be due")
	}
	if !u.IsDue(at(12, 0)) {
		t.Error("previous day refresh, scheduled time passed, should be due")
	}
}

func TestContentUnit_IsDue_ScheduledExactBoundary(t *testing.T) {
	u := &ContentUnit{
		PluginID: "news",
		Name:     "daily",
		Refresh:  RefreshPolicy{Scheduled: "08:00"},
	}

	// Refreshed at exactly the scheduled minute: not due again today
	u.MarkRefreshed(at(8, 0))
	if u.IsDue(at(8, 30)) {
		t.Error("refreshed exactly at scheduled minute, should not be due")
	}
}

func TestContentUnit_IsDue_MalformedScheduled(t *testing.T) {
	now := at(10, 0)
	u := &ContentUnit{
		PluginID: "news",
		Name:     "daily",
		Refresh:  RefreshPolicy{Scheduled: "00-30"},
	}
	// "00-30" sorts below the last-refresh clock, so the string
	// heuristic stays quiet and the parse failure falls through
	// to not-due.
	u.MarkRefreshed(now.Add(-time.Minute))

	if u.IsDue(now) {
		t.Error("malformed scheduled time should never report due")
	}
}

func TestContentUnit_IsDue_IntervalOrScheduled(t *testing.T) {
	now := at(10, 0)
	u := &ContentUnit{
		PluginID: "news",
		Name:     "both",
		Refresh:  RefreshPolicy{IntervalSec: 3600, Scheduled: "09:30"},
	}

	// Interval not elapsed, but scheduled time crossed; union says due
	u.MarkRefreshed(at(9, 15))
	if !u.IsDue(now) {
		t.Error("either condition should be enough")
	}

	// Neither condition holds
	u.MarkRefreshed(at(9, 45))
	if u.IsDue(now) {
		t.Error("neither interval nor schedule fired, should not be due")
	}
}

// --- Misc Tests ---

func TestContentUnit_ImagePath(t *testing.T) {
	u := &ContentUnit{PluginID: "weather", Name: "Front Hall"}
	if got := u.ImagePath(); got != "weather_Front_Hall.png" {
		t.Errorf("ImagePath = %q, want weather_Front_Hall.png", got)
	}
}

func TestContentUnit_Apply(t *testing.T) {
	u := &ContentUnit{
		PluginID: "clock",
		Name:     "a",
		Settings: map[string]any{"tz": "UTC"},
		Refresh:  RefreshPolicy{IntervalSec: 300},
	}
	refreshed := at(9, 0)
	u.MarkRefreshed(refreshed)

	u.Apply(UnitPatch{
		Settings: map[string]any{"tz": "Europe/Moscow"},
		Refresh:  &RefreshPolicy{Scheduled: "06:00"},
	})

	if u.Settings["tz"] != "Europe/Moscow" {
		t.Error("settings should be replaced")
	}
	if u.Refresh.IntervalSec != 0 || u.Refresh.Scheduled != "06:00" {
		t.Errorf("refresh policy = %+v, want replaced wholesale", u.Refresh)
	}
	// Identity and history survive a patch
	if u.PluginID != "clock" || u.Name != "a" {
		t.Error("patch must not change identity")
	}
	if u.LatestRefresh == nil || !u.LatestRefresh.Equal(refreshed) {
		t.Error("patch must not change refresh history")
	}
}

func TestContentUnit_Apply_NilFieldsKeepValues(t *testing.T) {
	u := &ContentUnit{
		PluginID: "clock",
		Name:     "a",
		Settings: map[string]any{"tz": "UTC"},
		Refresh:  RefreshPolicy{IntervalSec: 300},
	}

	u.Apply(UnitPatch{})

	if u.Settings["tz"] != "UTC" {
		t.Error("nil settings patch should keep old settings")
	}
	if u.Refresh.IntervalSec != 300 {
		t.Error("nil refresh patch should keep old policy")
	}
}
