package connections

import (
	"net"
	"time"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/infrademo/infrademo/internal/config"
	"github.com/infrademo/infrademo/pkg/logger"
)

// EventsTopic is the fixed topic the /event endpoint publishes to.
const EventsTopic = "infra-events"

const (
	brokerSocketTimeout = 10 * time.Second
	produceTimeout      = 5 * time.Second
)

// newKafkaPublisher constructs the publisher. Overridable in tests.
var newKafkaPublisher = func(cfg kafka.PublisherConfig, log watermill.LoggerAdapter) (message.Publisher, error) {
	return kafka.NewPublisher(cfg, log)
}

// dialKafka builds a sync publisher for the configured broker. Each publish
// is acknowledged before returning, bounded by the produce timeout, and
// Close flushes anything still buffered.
func dialKafka(cfg config.KafkaConfig, log *logger.Logger) (message.Publisher, error) {
	sc := kafka.DefaultSaramaSyncPublisherConfig()
	sc.ClientID = "infrademo"
	sc.Net.DialTimeout = brokerSocketTimeout
	sc.Net.ReadTimeout = brokerSocketTimeout
	sc.Net.WriteTimeout = brokerSocketTimeout
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Timeout = produceTimeout
	// Broker dials must use IPv4 only.
	sc.Net.Proxy.Enable = true
	sc.Net.Proxy.Dialer = tcp4Dialer{timeout: brokerSocketTimeout}

	return newKafkaPublisher(kafka.PublisherConfig{
		Brokers:               []string{cfg.Broker()},
		Marshaler:             kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: sc,
	}, watermillLogger{log: log})
}

// tcp4Dialer restricts broker dials to IPv4.
type tcp4Dialer struct {
	timeout time.Duration
}

func (d tcp4Dialer) Dial(network, addr string) (net.Conn, error) {
	return net.DialTimeout("tcp4", addr, d.timeout)
}

// watermillLogger adapts the service logger to watermill's interface.
type watermillLogger struct {
	log *logger.Logger
}

func (w watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	w.withFields(fields).WithError(err).Error(msg)
}

func (w watermillLogger) Info(msg string, fields watermill.LogFields) {
	w.withFields(fields).Info(msg)
}

func (w watermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.withFields(fields).Debug(msg)
}

func (w watermillLogger) Trace(msg string, fields watermill.LogFields) {
	w.withFields(fields).Debug(msg)
}

func (w watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return watermillLogger{log: w.withFields(fields)}
}

func (w watermillLogger) withFields(fields watermill.LogFields) *logger.Logger {
	if len(fields) == 0 {
		return w.log
	}
	return w.log.WithFields(map[string]interface{}(fields))
}
