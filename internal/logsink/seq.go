package logsink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Seq ingests CLEF (compact log event format) documents. Each hook delivery
// posts a single event; the queue decouples request goroutines from the
// sink so a slow or dead Seq never blocks a handler.
const (
	seqIngestPath  = "/api/events/raw"
	seqContentType = "application/vnd.serilog.clef"

	seqQueueSize   = 256
	seqPostTimeout = 5 * time.Second
)

type seqHook struct {
	endpoint string
	client   *http.Client

	queue     chan []byte
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newSeqHook(baseURL string) (*seqHook, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse seq url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("seq url %q missing scheme or host", baseURL)
	}

	h := &seqHook{
		endpoint: strings.TrimRight(baseURL, "/") + seqIngestPath,
		client:   &http.Client{Timeout: seqPostTimeout},
		queue:    make(chan []byte, seqQueueSize),
		quit:     make(chan struct{}),
	}
	h.wg.Add(1)
	go h.run()
	return h, nil
}

// Levels implements logrus.Hook.
func (h *seqHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook. It never blocks: when the queue is full the
// event is dropped.
func (h *seqHook) Fire(entry *logrus.Entry) error {
	payload, err := json.Marshal(clefEvent(entry))
	if err != nil {
		return err
	}
	select {
	case h.queue <- payload:
	default:
	}
	return nil
}

// Close drains the queue and stops the delivery goroutine. Idempotent.
func (h *seqHook) Close() {
	h.closeOnce.Do(func() {
		close(h.quit)
	})
	h.wg.Wait()
}

func (h *seqHook) run() {
	defer h.wg.Done()
	for {
		select {
		case payload := <-h.queue:
			h.post(payload)
		case <-h.quit:
			for {
				select {
				case payload := <-h.queue:
					h.post(payload)
				default:
					return
				}
			}
		}
	}
}

// post delivers one event. Failures are dropped: the sink must never feed
// errors back into the logging pipeline.
func (h *seqHook) post(payload []byte) {
	resp, err := h.client.Post(h.endpoint, seqContentType, bytes.NewReader(payload))
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}

func clefEvent(entry *logrus.Entry) map[string]interface{} {
	event := map[string]interface{}{
		"@t": entry.Time.UTC().Format(time.RFC3339Nano),
		"@l": clefLevel(entry.Level),
		"@m": entry.Message,
	}
	for k, v := range entry.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		event[k] = v
	}
	return event
}

func clefLevel(level logrus.Level) string {
	switch level {
	case logrus.TraceLevel:
		return "Verbose"
	case logrus.DebugLevel:
		return "Debug"
	case logrus.InfoLevel:
		return "Information"
	case logrus.WarnLevel:
		return "Warning"
	case logrus.ErrorLevel:
		return "Error"
	default:
		return "Fatal"
	}
}
