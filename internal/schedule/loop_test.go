package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Vitrine/internal/domain"
	"github.com/shaiso/Vitrine/internal/mq"
)

func newTestLoop(t *testing.T, m *Manager) *Loop {
	t.Helper()
	cycle, err := NewCycle(3600, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewLoop(LoopConfig{
		Manager:  m,
		Cycle:    cycle,
		DeviceID: "test",
	})
}

func completedDelivery(payload mq.RefreshCompletedPayload) *mq.Delivery {
	return &mq.Delivery{
		Message: mq.Message{
			ID:        uuid.New().String(),
			Type:      mq.MessageTypeRefreshCompleted,
			Payload:   payload,
			Timestamp: time.Now(),
		},
	}
}

func TestLoop_Tick_NoActiveRotation(t *testing.T) {
	l := newTestLoop(t, NewManager(nil))
	if err := l.Tick(context.Background(), at(10, 0)); err != nil {
		t.Errorf("tick on empty manager should be quiet, got %v", err)
	}
}

func TestLoop_Tick_NoPublisher(t *testing.T) {
	m := newTestManager(t, rotationWithUnit("AllDay", "00:00", "24:00"))
	l := newTestLoop(t, m)

	// Unit is due but there is nowhere to publish; not an error
	if err := l.Tick(context.Background(), at(10, 0)); err != nil {
		t.Errorf("tick without publisher should be quiet, got %v", err)
	}

	// Cycle is only marked when a job actually goes out
	if !l.cycle.Due(at(10, 0)) {
		t.Error("cycle must stay due when nothing was published")
	}
}

func TestLoop_RequestRefresh_NoPublisher(t *testing.T) {
	m := newTestManager(t, rotationWithUnit("AllDay", "00:00", "24:00"))
	l := newTestLoop(t, m)

	unit := &domain.ContentUnit{PluginID: "clock", Name: "AllDay-unit"}
	if _, err := l.RequestRefresh(context.Background(), "AllDay", unit, domain.RefreshManual); err == nil {
		t.Error("expected error when no publisher is configured")
	}
}

// --- HandleCompleted Tests ---

func TestLoop_HandleCompleted_Success(t *testing.T) {
	m := newTestManager(t, rotationWithUnit("AllDay", "00:00", "24:00"))
	l := newTestLoop(t, m)

	finished := at(10, 0)
	d := completedDelivery(mq.RefreshCompletedPayload{
		JobID:          uuid.New(),
		PluginID:       "clock",
		PluginInstance: "AllDay-unit",
		RefreshType:    domain.RefreshPlaylist,
		Rotation:       "AllDay",
		Status:         mq.RefreshStatusSucceeded,
		ImageHash:      "abc123",
		FinishedAt:     finished,
	})

	if err := l.HandleCompleted(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, _, err := m.FindUnit("clock", "AllDay-unit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.LatestRefresh == nil || !u.LatestRefresh.Equal(finished) {
		t.Errorf("latest refresh = %v, want %v", u.LatestRefresh, finished)
	}
}

func TestLoop_HandleCompleted_Failed(t *testing.T) {
	m := newTestManager(t, rotationWithUnit("AllDay", "00:00", "24:00"))
	l := newTestLoop(t, m)

	d := completedDelivery(mq.RefreshCompletedPayload{
		JobID:          uuid.New(),
		PluginID:       "clock",
		PluginInstance: "AllDay-unit",
		RefreshType:    domain.RefreshPlaylist,
		Rotation:       "AllDay",
		Status:         mq.RefreshStatusFailed,
		Error:          "render exploded",
	})

	if err := l.HandleCompleted(context.Background(), d); err != nil {
		t.Fatalf("failed job must still be acked, got %v", err)
	}

	u, _, err := m.FindUnit("clock", "AllDay-unit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.LatestRefresh != nil {
		t.Error("failed refresh must not mark the unit as refreshed")
	}
}

func TestLoop_HandleCompleted_UnknownUnit(t *testing.T) {
	m := newTestManager(t, rotationWithUnit("AllDay", "00:00", "24:00"))
	l := newTestLoop(t, m)

	d := completedDelivery(mq.RefreshCompletedPayload{
		JobID:          uuid.New(),
		PluginID:       "clock",
		PluginInstance: "deleted-meanwhile",
		RefreshType:    domain.RefreshPlaylist,
		Rotation:       "AllDay",
		Status:         mq.RefreshStatusSucceeded,
		FinishedAt:     at(10, 0),
	})

	// Unit removed while the job was rendering: log and move on
	if err := l.HandleCompleted(context.Background(), d); err != nil {
		t.Errorf("completion for a deleted unit should be tolerated, got %v", err)
	}
}

func TestLoop_HandleCompleted_Malformed(t *testing.T) {
	l := newTestLoop(t, NewManager(nil))

	d := &mq.Delivery{
		Message: mq.Message{
			ID:      uuid.New().String(),
			Type:    mq.MessageTypeRefreshCompleted,
			Payload: map[string]any{"job_id": 12345},
		},
	}

	// Redelivery will not fix a broken payload; ack and forget
	if err := l.HandleCompleted(context.Background(), d); err != nil {
		t.Errorf("malformed payload should be dropped, got %v", err)
	}
}
