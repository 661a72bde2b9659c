package logsink

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/grafana/loki-client-go/loki"
	"github.com/prometheus/common/model"
	"github.com/sirupsen/logrus"
)

const lokiPushTimeout = 3 * time.Second

// streamLabels identify this service's stream in Loki.
var streamLabels = model.LabelSet{
	"application": "infra-demo",
	"environment": "Development",
}

type lokiHook struct {
	client    *loki.Client
	labels    model.LabelSet
	formatter logrus.Formatter
	closeOnce sync.Once
}

func newLokiHook(pushURL string) (*lokiHook, error) {
	cfg, err := loki.NewDefaultConfig(pushURL)
	if err != nil {
		return nil, fmt.Errorf("loki config: %w", err)
	}
	cfg.Timeout = lokiPushTimeout

	client, err := loki.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("loki client: %w", err)
	}

	return &lokiHook{
		client:    client,
		labels:    streamLabels,
		formatter: &logrus.JSONFormatter{},
	}, nil
}

// Levels implements logrus.Hook.
func (h *lokiHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook. The client buffers and ships entries from its
// own goroutine; push failures stay inside the client.
func (h *lokiHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	return h.client.Handle(h.labels, entry.Time, string(bytes.TrimRight(line, "\n")))
}

// Close flushes buffered entries and stops the client. Idempotent.
func (h *lokiHook) Close() {
	h.closeOnce.Do(h.client.Stop)
}
