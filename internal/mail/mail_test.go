package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func TestPasswordResetTemplate(t *testing.T) {
	msg, err := PasswordReset("123456", 2*time.Minute)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if msg.Subject != PasswordResetSubject {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "123456") {
		t.Fatalf("code missing from body")
	}
	if !strings.Contains(msg.HTML, "2 minutes") {
		t.Fatalf("expiry missing from body")
	}
}

func TestSMTPSenderSend(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "noreply@example.com"})
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		if a == nil {
			t.Fatalf("expected auth when username is set")
		}
		return nil
	}

	err := s.Send(context.Background(), Message{To: "reader@example.com", Subject: "Hi", HTML: "<p>x</p>"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Fatalf("unexpected addr %s", gotAddr)
	}
	if gotFrom != "noreply@example.com" || len(gotTo) != 1 || gotTo[0] != "reader@example.com" {
		t.Fatalf("unexpected envelope %s -> %v", gotFrom, gotTo)
	}
	if !strings.Contains(string(gotBody), "Content-Type: text/html") {
		t.Fatalf("expected html content type in %q", gotBody)
	}
}

func TestSMTPSenderWrapsError(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25, From: "a@b.c"})
	boom := errors.New("connection refused")
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	if err := s.Send(context.Background(), Message{To: "x@y.z"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
