package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/andres10976/orderwatch/internal/model"
)

func TestMemorySettings_GetMissing(t *testing.T) {
	s := NewMemorySettings()
	_, err := s.Get(context.Background(), KeyZoomLevel)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMemorySettings_SetOverwrites(t *testing.T) {
	s := NewMemorySettings()
	ctx := context.Background()

	s.Set(ctx, KeyLastContentLength, "100")
	s.Set(ctx, KeyLastContentLength, "205")

	got, err := s.Get(ctx, KeyLastContentLength)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "205" {
		t.Errorf("Get() = %q, want %q", got, "205")
	}
}

func TestMemoryAlerts_ListNewestFirst(t *testing.T) {
	s := NewMemoryAlerts()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		s.Create(ctx, &model.Alert{
			ID:         uuid.New(),
			Source:     model.SourcePoll,
			DetectedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	got, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(got))
	}
	if !got[0].DetectedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("first alert detected at %v, want newest", got[0].DetectedAt)
	}
}

func TestMemoryAlerts_AcknowledgeKeepsFirstStamp(t *testing.T) {
	s := NewMemoryAlerts()
	ctx := context.Background()
	id := uuid.New()
	s.Create(ctx, &model.Alert{ID: id, Source: model.SourceSimulation, DetectedAt: time.Now()})

	first := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if err := s.Acknowledge(ctx, id, first); err != nil {
		t.Fatalf("Acknowledge() error = %v", err)
	}
	s.Acknowledge(ctx, id, first.Add(time.Hour))

	got, _ := s.List(ctx, 10)
	if got[0].AcknowledgedAt == nil || !got[0].AcknowledgedAt.Equal(first) {
		t.Errorf("AcknowledgedAt = %v, want %v", got[0].AcknowledgedAt, first)
	}
}

func TestMemoryAlerts_AcknowledgeUnknown(t *testing.T) {
	s := NewMemoryAlerts()
	err := s.Acknowledge(context.Background(), uuid.New(), time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Acknowledge() error = %v, want ErrNotFound", err)
	}
}
