// Package observability aggregates runtime counters for the telemetry
// worker. Counters are written from hot paths and must stay lock-free.
package observability

import (
	"sync/atomic"
)

type Snapshot struct {
	SendsAccepted    uint64 `json:"sends_accepted"`
	SendsDenied      uint64 `json:"sends_denied"`
	SendsFailed      uint64 `json:"sends_failed"`
	ProviderFallback uint64 `json:"provider_fallback"`
	Persisted        uint64 `json:"persisted"`
	Broadcasts       uint64 `json:"broadcasts"`
	TypingRelays     uint64 `json:"typing_relays"`
}

type PipelineStats struct {
	sendsAccepted    uint64
	sendsDenied      uint64
	sendsFailed      uint64
	providerFallback uint64
	persisted        uint64
	broadcasts       uint64
	typingRelays     uint64
}

func NewPipelineStats() *PipelineStats {
	return &PipelineStats{}
}

func (s *PipelineStats) IncrSendsAccepted()    { atomic.AddUint64(&s.sendsAccepted, 1) }
func (s *PipelineStats) IncrSendsDenied()      { atomic.AddUint64(&s.sendsDenied, 1) }
func (s *PipelineStats) IncrSendsFailed()      { atomic.AddUint64(&s.sendsFailed, 1) }
func (s *PipelineStats) IncrProviderFallback() { atomic.AddUint64(&s.providerFallback, 1) }
func (s *PipelineStats) IncrPersisted()        { atomic.AddUint64(&s.persisted, 1) }
func (s *PipelineStats) IncrBroadcasts()       { atomic.AddUint64(&s.broadcasts, 1) }
func (s *PipelineStats) IncrTypingRelays()     { atomic.AddUint64(&s.typingRelays, 1) }

func (s *PipelineStats) Snapshot() Snapshot {
	return Snapshot{
		SendsAccepted:    atomic.LoadUint64(&s.sendsAccepted),
		SendsDenied:      atomic.LoadUint64(&s.sendsDenied),
		SendsFailed:      atomic.LoadUint64(&s.sendsFailed),
		ProviderFallback: atomic.LoadUint64(&s.providerFallback),
		Persisted:        atomic.LoadUint64(&s.persisted),
		Broadcasts:       atomic.LoadUint64(&s.broadcasts),
		TypingRelays:     atomic.LoadUint64(&s.typingRelays),
	}
}
