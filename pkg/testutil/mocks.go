// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/infrademo/infrademo/internal/mail"
)

// RecordingPublisher is a message.Publisher that records published messages.
type RecordingPublisher struct {
	mu         sync.Mutex
	topics     map[string][]*message.Message
	closes     int
	PublishErr error
	CloseErr   error
}

// Publish records the messages, or fails with PublishErr when set.
func (p *RecordingPublisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.PublishErr != nil {
		return p.PublishErr
	}
	if p.topics == nil {
		p.topics = make(map[string][]*message.Message)
	}
	p.topics[topic] = append(p.topics[topic], messages...)
	return nil
}

// Close counts invocations, failing with CloseErr when set.
func (p *RecordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes++
	return p.CloseErr
}

// Published returns the messages recorded for a topic.
func (p *RecordingPublisher) Published(topic string) []*message.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*message.Message(nil), p.topics[topic]...)
}

// Closes returns how many times Close was called.
func (p *RecordingPublisher) Closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

// RecordingMailer captures outbound messages instead of talking SMTP.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	Err  error
}

// Send records the message, or fails with Err when set.
func (m *RecordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns the messages recorded so far.
func (m *RecordingMailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}
