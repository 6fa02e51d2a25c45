package testsupport

import (
	"context"
	"sync"
)

// SentMessage is one captured notification.
type SentMessage struct {
	Subject string
	Body    string
}

// RecordingSender captures notifications instead of delivering them.
type RecordingSender struct {
	mu       sync.Mutex
	messages []SentMessage
	// Err, when set, is returned from Send after recording.
	Err error
}

// Send records the message.
func (s *RecordingSender) Send(_ context.Context, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, SentMessage{Subject: subject, Body: htmlBody})
	return s.Err
}

// Messages returns a copy of everything sent so far.
func (s *RecordingSender) Messages() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMessage(nil), s.messages...)
}
