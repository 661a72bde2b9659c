// Package logsink attaches the remote log sinks (Seq and Loki) to the
// service logger as logrus hooks.
//
// Sinks are best-effort: a sink that cannot be configured is skipped with a
// warning, and delivery failures are swallowed inside the hooks. Logging is
// never a correctness dependency of a request.
package logsink

import (
	"github.com/infrademo/infrademo/internal/config"
	"github.com/infrademo/infrademo/pkg/logger"
)

// Attach wires the configured sinks into log and returns a cleanup func that
// flushes and stops them. The returned func is safe to call when no sink
// could be attached.
func Attach(log *logger.Logger, cfg config.LoggingConfig) func() {
	var cleanups []func()

	seq, err := newSeqHook(cfg.SeqURL)
	if err != nil {
		log.WithError(err).Warn("seq sink disabled")
	} else {
		log.AddHook(seq)
		cleanups = append(cleanups, seq.Close)
	}

	loki, err := newLokiHook(cfg.LokiURL)
	if err != nil {
		log.WithError(err).Warn("loki sink disabled")
	} else {
		log.AddHook(loki)
		cleanups = append(cleanups, loki.Close)
	}

	return func() {
		for _, cleanup := range cleanups {
			cleanup()
		}
	}
}
