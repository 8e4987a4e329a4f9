package messaging

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestValidateTwilioSignature(t *testing.T) {
	authToken := "test_token"
	webhookURL := "https://example.com/sms-webhook"

	formData := url.Values{}
	formData.Set("MessageSid", "SM123")
	formData.Set("From", "+15550001")
	formData.Set("Body", "Hello")

	req := httptest.NewRequest(http.MethodPost, webhookURL, strings.NewReader(formData.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	payload := buildSignaturePayload(webhookURL, formData)
	req.Header.Set("X-Twilio-Signature", computeSignature(payload, authToken))

	if !ValidateTwilioSignature(req, authToken, webhookURL) {
		t.Error("expected signature validation to pass")
	}
}

func TestValidateTwilioSignatureInvalid(t *testing.T) {
	webhookURL := "https://example.com/sms-webhook"

	formData := url.Values{}
	formData.Set("MessageSid", "SM123")

	req := httptest.NewRequest(http.MethodPost, webhookURL, strings.NewReader(formData.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Twilio-Signature", "invalid_signature")

	if ValidateTwilioSignature(req, "test_token", webhookURL) {
		t.Error("expected signature validation to fail")
	}
}

func TestValidateTwilioSignatureMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "https://example.com/sms-webhook", nil)
	if ValidateTwilioSignature(req, "test_token", "https://example.com/sms-webhook") {
		t.Error("expected validation to fail without a signature header")
	}
}

func TestParseTwilioWebhook(t *testing.T) {
	formData := url.Values{}
	formData.Set("MessageSid", "SM123")
	formData.Set("AccountSid", "AC456")
	formData.Set("From", "+15550001")
	formData.Set("To", "+15559999")
	formData.Set("Body", "yes")

	req := httptest.NewRequest(http.MethodPost, "/sms-webhook", strings.NewReader(formData.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	webhook, err := ParseTwilioWebhook(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if webhook.MessageSid != "SM123" || webhook.From != "+15550001" || webhook.Body != "yes" {
		t.Errorf("unexpected webhook: %+v", webhook)
	}
}

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+1 (555) 123-4567", "+15551234567"},
		{"15551234567", "+15551234567"},
		{"  +15550001  ", "+15550001"},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		if got := NormalizeE164(tt.in); got != tt.want {
			t.Errorf("NormalizeE164(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
