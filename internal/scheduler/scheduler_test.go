package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"MarketPulse/internal/model"
)

type countingTicker struct {
	n   atomic.Int32
	err error
}

func (c *countingTicker) Tick(context.Context) error {
	c.n.Add(1)
	return c.err
}

type countingRefresher struct{ n atomic.Int32 }

func (c *countingRefresher) Refresh(context.Context) (*model.DatasetStats, error) {
	c.n.Add(1)
	return &model.DatasetStats{GenerationID: "g"}, nil
}

func TestRegisterAll(t *testing.T) {
	tests := []struct {
		name      string
		broadcast string
		refresh   string
		entries   int
		wantErr   bool
	}{
		{"broadcast only", "@every 30s", "", 1, false},
		{"both", "@every 30s", "0 0 3 * * *", 2, false},
		{"five field refresh", "@every 30s", "0 3 * * *", 2, false},
		{"none", "", "", 0, false},
		{"bad cron expression", "every thirty seconds", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(context.Background(), &countingTicker{}, &countingRefresher{}, nil)
			err := s.RegisterAll(tt.broadcast, tt.refresh)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if got := len(s.Cron.Entries()); got != tt.entries {
				t.Errorf("expected %d entries, got %d", tt.entries, got)
			}
		})
	}
}

func TestScheduler_RunsTasks(t *testing.T) {
	ticker := &countingTicker{err: errors.New("provider down")}
	refresher := &countingRefresher{}
	s := NewScheduler(context.Background(), ticker, refresher, nil)
	if err := s.RegisterAll("@every 1s", "@every 1s"); err != nil {
		t.Fatalf("register: %v", err)
	}
	s.Start()
	time.Sleep(1500 * time.Millisecond)
	<-s.Stop().Done()

	if ticker.n.Load() < 1 || refresher.n.Load() < 1 {
		t.Errorf("expected both tasks to run, got tick=%d refresh=%d", ticker.n.Load(), refresher.n.Load())
	}

	s.RunBroadcastNow()
	if ticker.n.Load() < 2 {
		t.Error("expected manual tick to run")
	}
}
