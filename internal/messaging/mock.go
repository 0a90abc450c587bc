package messaging

import (
	"context"

	"github.com/jovisbot/jovis/internal/models"
)

// MockService is an in-memory Service for tests. Sent messages are
// recorded and inbound responses are injected with Inject.
type MockService struct {
	Sent      []SentMessage
	SendErr   error
	responses chan models.Response
}

// SentMessage is one recorded outbound message.
type SentMessage struct {
	To      string
	Body    string
	Choices []models.Choice
}

func NewMockService() *MockService {
	return &MockService{
		responses: make(chan models.Response, DefaultChannelBufferSize),
	}
}

func (m *MockService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

func (m *MockService) SendMessage(ctx context.Context, to string, body string) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, SentMessage{To: to, Body: body})
	return nil
}

func (m *MockService) SendChoices(ctx context.Context, to string, body string, choices []models.Choice) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, SentMessage{To: to, Body: body, Choices: choices})
	return nil
}

func (m *MockService) Start(ctx context.Context) error { return nil }

func (m *MockService) Stop() error {
	close(m.responses)
	return nil
}

func (m *MockService) Responses() <-chan models.Response {
	return m.responses
}

// Inject feeds an inbound response into the channel, as if a user had
// sent a message.
func (m *MockService) Inject(r models.Response) {
	m.responses <- r
}
