package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"chat-relay/observability"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker periodically logs the pipeline counters together with the
// server process's own cpu and memory usage. Reading the counters is
// lock-free, so sampling never interferes with the hot path.
type TelemetryWorker struct {
	log            *slog.Logger
	stats          *observability.PipelineStats
	metricInterval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, stats *observability.PipelineStats,
	metricInterval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, stats: stats, metricInterval: metricInterval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	self, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.log.Warn("Process metrics unavailable", "err", err)
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry")
			return nil
		case <-ticker.C:
			w.report(self)
		}
	}
}

func (w *TelemetryWorker) report(self *process.Process) {
	snapshot := w.stats.Snapshot()
	attrs := []any{
		"sends_accepted", snapshot.SendsAccepted,
		"sends_denied", snapshot.SendsDenied,
		"sends_failed", snapshot.SendsFailed,
		"provider_fallback", snapshot.ProviderFallback,
		"persisted", snapshot.Persisted,
		"broadcasts", snapshot.Broadcasts,
		"typing_relays", snapshot.TypingRelays,
	}

	if self != nil {
		if cpu, err := self.CPUPercent(); err != nil {
			w.log.Error("Error while finding process cpu usage", "err", err)
		} else {
			attrs = append(attrs, "cpu_percent", cpu)
		}
		if ram, err := self.MemoryPercent(); err != nil {
			w.log.Error("Error while finding process ram usage", "err", err)
		} else {
			attrs = append(attrs, "ram_percent", ram)
		}
	}

	w.log.Info("Pipeline telemetry", attrs...)
}
