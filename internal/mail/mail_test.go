package mail

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestVerificationMessage(t *testing.T) {
	msg, err := VerificationMessage("https://finance.example.com/", "ana@example.com", "tok-123", "24 hours")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if msg.To != "ana@example.com" {
		t.Errorf("Expected recipient ana@example.com, got %s", msg.To)
	}
	if msg.Subject != verificationSubject {
		t.Errorf("Expected subject %q, got %q", verificationSubject, msg.Subject)
	}
	if !strings.Contains(msg.HTML, "https://finance.example.com/verify?token=tok-123") {
		t.Errorf("Expected verify link in body, got %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "email=ana%40example.com") {
		t.Errorf("Expected escaped resend email in body, got %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "24 hours") {
		t.Error("Expected validity in body")
	}
}

func TestPasswordResetMessage(t *testing.T) {
	msg, err := PasswordResetMessage("http://localhost:3000", "bo@example.com", "reset", "24 hours")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if msg.Subject != passwordResetSubject {
		t.Errorf("Expected subject %q, got %q", passwordResetSubject, msg.Subject)
	}
	if !strings.Contains(msg.HTML, "http://localhost:3000/reset-password?token=reset") {
		t.Errorf("Expected reset link in body, got %s", msg.HTML)
	}
}

func TestBuildMessage_HeaderOrder(t *testing.T) {
	raw := buildMessage("noreply@example.com", Message{To: "a@b.c", Subject: "Hi", HTML: "<p>x</p>"})

	want := "From: noreply@example.com\r\nTo: a@b.c\r\nSubject: Hi\r\nMIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n\r\n<p>x</p>"
	if raw != want {
		t.Errorf("Unexpected message:\n%q\nwant\n%q", raw, want)
	}
}

func TestLogSender_NeverFails(t *testing.T) {
	s := NewLogSender(zerolog.Nop())
	if err := s.Send(context.Background(), Message{To: "a@b.c"}); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}
