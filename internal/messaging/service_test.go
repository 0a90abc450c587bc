package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jovisbot/jovis/internal/models"
	"github.com/jovisbot/jovis/internal/twiliowhatsapp"
)

func TestCanonicalizePhone(t *testing.T) {
	cases := map[string]string{
		"+5511999990000":          "5511999990000",
		"+55 (11) 99999-0000":     "5511999990000",
		"whatsapp:+5511999990000": "5511999990000",
	}
	for raw, want := range cases {
		got, err := canonicalizePhone(raw)
		if err != nil {
			t.Errorf("canonicalizePhone(%q) failed: %v", raw, err)
			continue
		}
		if got != want {
			t.Errorf("canonicalizePhone(%q) = %q, want %q", raw, got, want)
		}
	}

	for _, raw := range []string{"", "whatsapp:", "12345"} {
		if _, err := canonicalizePhone(raw); err == nil {
			t.Errorf("Expected %q to be rejected", raw)
		}
	}
}

func TestRenderChoices(t *testing.T) {
	body := renderChoices("Escolha a matéria:", []models.Choice{
		{Label: "Cálculo I", Token: "subject:1"},
		{Label: "Redes", Token: "subject:2"},
	})
	if !strings.HasPrefix(body, "Escolha a matéria:") {
		t.Errorf("Expected original body first, got %q", body)
	}
	if !strings.Contains(body, "*1* - Cálculo I") || !strings.Contains(body, "*2* - Redes") {
		t.Errorf("Expected numbered options, got %q", body)
	}
}

func TestMockServiceRecordsAndInjects(t *testing.T) {
	svc := NewMockService()

	if err := svc.SendMessage(context.Background(), "5511999990000", "oi"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(svc.Sent) != 1 || svc.Sent[0].Body != "oi" {
		t.Errorf("Expected message recorded, got %v", svc.Sent)
	}

	svc.Inject(models.Response{From: "+5511999990000", Body: "/start"})
	resp := <-svc.Responses()
	if resp.Body != "/start" {
		t.Errorf("Expected injected response, got %+v", resp)
	}

	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if _, ok := <-svc.Responses(); ok {
		t.Error("Expected responses channel closed after Stop")
	}
}

func TestTwilioServiceSendMessage(t *testing.T) {
	client := &twiliowhatsapp.MockClient{}
	svc := NewTwilioService(client)

	if err := svc.SendMessage(context.Background(), "+55 (11) 99999-0000", "olá"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(client.SentMessages) != 1 {
		t.Fatalf("Expected 1 sent message, got %d", len(client.SentMessages))
	}
	if client.SentMessages[0].To != "5511999990000" {
		t.Errorf("Expected canonical recipient, got %q", client.SentMessages[0].To)
	}

	if err := svc.SendMessage(context.Background(), "not-a-number", "olá"); err == nil {
		t.Error("Expected invalid recipient to be rejected")
	}
}

func TestTwilioServiceSendChoicesRendersInline(t *testing.T) {
	client := &twiliowhatsapp.MockClient{}
	svc := NewTwilioService(client)

	err := svc.SendChoices(context.Background(), "5511999990000", "Escolha:", []models.Choice{
		{Label: "Editar", Token: "action:edit"},
	})
	if err != nil {
		t.Fatalf("SendChoices failed: %v", err)
	}
	if !strings.Contains(client.SentMessages[0].Body, "*1* - Editar") {
		t.Errorf("Expected inline option list, got %q", client.SentMessages[0].Body)
	}
}

func TestTwilioServiceStopRejectsSends(t *testing.T) {
	svc := NewTwilioService(&twiliowhatsapp.MockClient{})
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := svc.SendMessage(context.Background(), "5511999990000", "olá"); err != ErrServiceStopped {
		t.Errorf("Expected ErrServiceStopped, got %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Errorf("Expected repeated Stop to be a no-op, got %v", err)
	}
}

func TestTwilioWebhookHandler(t *testing.T) {
	svc := NewTwilioService(&twiliowhatsapp.MockClient{})

	form := url.Values{}
	form.Set("From", "whatsapp:+5511999990000")
	form.Set("Body", "/start")
	req := httptest.NewRequest(http.MethodPost, "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	svc.WebhookHandler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	resp := <-svc.Responses()
	if resp.From != "whatsapp:+5511999990000" || resp.Body != "/start" {
		t.Errorf("Expected webhook payload emitted, got %+v", resp)
	}
}

func TestTwilioWebhookHandlerRejectsMissingFields(t *testing.T) {
	svc := NewTwilioService(&twiliowhatsapp.MockClient{})

	form := url.Values{}
	form.Set("From", "whatsapp:+5511999990000")
	req := httptest.NewRequest(http.MethodPost, "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	svc.WebhookHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing body, got %d", rec.Code)
	}
}
