package observability

import (
	"log/slog"
	"sort"
	"strconv"

	"frenparty/core/events"
	coretypes "frenparty/core/types"
)

// Sink forwards settled-trade events to the structured log and the
// prometheus registry. It satisfies the events.Emitter interface.
type Sink struct {
	logger *slog.Logger
}

// NewSink builds a sink logging through the supplied logger. A nil logger
// falls back to the process default.
func NewSink(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{logger: logger}
}

// Emit implements events.Emitter.
func (s *Sink) Emit(evt events.Event) {
	if s == nil || evt == nil {
		return
	}
	payload, ok := evt.(interface{ Event() *coretypes.Event })
	if !ok {
		s.logger.Info("event", slog.String("type", evt.EventType()))
		return
	}
	e := payload.Event()
	if e == nil {
		return
	}

	keys := make([]string, 0, len(e.Attributes))
	for key := range e.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		args = append(args, slog.String(key, e.Attributes[key]))
	}
	s.logger.Info(e.Type, args...)

	if shareCount, err := strconv.ParseUint(e.Attributes["shares"], 10, 64); err == nil {
		Market().RecordTrade(e.Attributes["direction"], shareCount)
	}
	protocolFee, _ := strconv.ParseFloat(e.Attributes["protocolFee"], 64)
	subjectFee, _ := strconv.ParseFloat(e.Attributes["subjectFee"], 64)
	Market().RecordFees(protocolFee, subjectFee)
}
