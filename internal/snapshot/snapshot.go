// Package snapshot periodically exports the laid-out dependency graph to
// one or more destinations (S3, local file) so dashboards can render it
// without talking to the tracker directly.
package snapshot

import (
	"bytes"
	"context"
	"log/slog"
	"time"
)

// Destination receives one complete JSONL snapshot per export.
type Destination interface {
	Write(ctx context.Context, data []byte) error
}

// Scheduler exports the graph once at startup and then on every tick until
// stopped. A failing destination is logged and skipped; the other
// destinations still receive the snapshot.
type Scheduler struct {
	lister       IssueLister
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	done    chan struct{}
	stopped chan struct{}
}

func NewScheduler(lister IssueLister, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		lister:       lister,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.loop()
}

// Stop ends the export loop and waits for an in-flight export to finish.
func (s *Scheduler) Stop() {
	close(s.done)
	<-s.stopped
}

func (s *Scheduler) loop() {
	defer close(s.stopped)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.done
		cancel()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.export(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("snapshot export failed", "err", err)
		}
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) export(ctx context.Context) error {
	var buf bytes.Buffer
	if err := ExportJSONL(ctx, s.lister, &buf); err != nil {
		return err
	}
	data := buf.Bytes()

	wrote := 0
	for i, dest := range s.destinations {
		if err := dest.Write(ctx, data); err != nil {
			s.logger.Error("snapshot destination write failed", "destination", i, "err", err)
			continue
		}
		wrote++
	}

	s.logger.Info("snapshot exported", "destinations", wrote, "bytes", len(data))
	return nil
}
