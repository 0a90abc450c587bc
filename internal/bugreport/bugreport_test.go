package bugreport

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
)

func TestSMTPReporterSendsEmail(t *testing.T) {
	r, err := NewSMTPReporter(
		WithHost("smtp.example.com"),
		WithPort("2525"),
		WithCredentials("jovis", "secret"),
		WithAddresses("bot@example.com", "dev@example.com"),
	)
	if err != nil {
		t.Fatalf("NewSMTPReporter failed: %v", err)
	}

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth
	r.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	if err := r.Report(context.Background(), 5511999990000, "o menu some ao cancelar"); err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if gotAddr != "smtp.example.com:2525" {
		t.Errorf("Expected addr smtp.example.com:2525, got %q", gotAddr)
	}
	if gotAuth == nil {
		t.Error("Expected plain auth when credentials are set")
	}
	if gotFrom != "bot@example.com" {
		t.Errorf("Expected from bot@example.com, got %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "dev@example.com" {
		t.Errorf("Expected recipient dev@example.com, got %v", gotTo)
	}

	body := string(gotMsg)
	if !strings.Contains(body, "Subject: [Jovis] Bug report from user 5511999990000") {
		t.Errorf("Expected subject with user ID, got %q", body)
	}
	if !strings.Contains(body, "o menu some ao cancelar") {
		t.Errorf("Expected description in body, got %q", body)
	}
}

func TestSMTPReporterSkipsAuthWithoutCredentials(t *testing.T) {
	r, err := NewSMTPReporter(
		WithHost("smtp.example.com"),
		WithAddresses("bot@example.com", "dev@example.com"),
	)
	if err != nil {
		t.Fatalf("NewSMTPReporter failed: %v", err)
	}

	var gotAuth smtp.Auth = smtp.PlainAuth("", "x", "x", "x")
	r.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAuth = a
		return nil
	}
	if err := r.Report(context.Background(), 1, "teste"); err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if gotAuth != nil {
		t.Error("Expected nil auth without credentials")
	}
}

func TestSMTPReporterDefaultsPort(t *testing.T) {
	r, err := NewSMTPReporter(
		WithHost("smtp.example.com"),
		WithAddresses("bot@example.com", "dev@example.com"),
	)
	if err != nil {
		t.Fatalf("NewSMTPReporter failed: %v", err)
	}
	if r.opts.Port != "587" {
		t.Errorf("Expected default port 587, got %q", r.opts.Port)
	}
}

func TestNewSMTPReporterRequiresAddresses(t *testing.T) {
	if _, err := NewSMTPReporter(WithHost("smtp.example.com")); err == nil {
		t.Error("Expected error when from and to are missing")
	}
}

func TestNopReporter(t *testing.T) {
	if err := (NopReporter{}).Report(context.Background(), 1, "teste"); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}
