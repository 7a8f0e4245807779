package notify

import (
	"context"
	"errors"
	"net/http"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "test@example.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "test@example.com",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != defaultFromName {
		t.Errorf("expected default from name %q, got %q", defaultFromName, sender.fromName)
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{logger: logging.New("error")}

	err := sender.Send(context.Background(), EmailMessage{To: "recipient@example.com", Subject: "Test"})
	if err == nil {
		t.Error("expected error when client is nil")
	}
}

type fakeSendGrid struct {
	got  *mail.SGMailV3
	resp *rest.Response
	err  error
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.got = email
	return f.resp, f.err
}

func TestSendGridSender_SetsReplyTo(t *testing.T) {
	fake := &fakeSendGrid{resp: &rest.Response{StatusCode: http.StatusAccepted}}
	sender := &SendGridSender{client: fake, fromEmail: "from@example.com", fromName: "Site", logger: logging.New("error")}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "ops@example.com",
		ReplyTo: "lead@example.com",
		Subject: "New lead: Ann",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.got.ReplyTo == nil || fake.got.ReplyTo.Address != "lead@example.com" {
		t.Fatalf("expected reply-to to be set, got %+v", fake.got.ReplyTo)
	}
	if fake.got.Subject != "New lead: Ann" {
		t.Fatalf("unexpected subject %q", fake.got.Subject)
	}
}

func TestSendGridSender_ErrorStatusIsProviderError(t *testing.T) {
	fake := &fakeSendGrid{resp: &rest.Response{
		StatusCode: http.StatusForbidden,
		Body:       `{"errors":[{"message":"access forbidden"}]}`,
		Headers:    map[string][]string{"X-Message-Id": {"msg-1"}},
	}}
	sender := &SendGridSender{client: fake, logger: logging.New("error")}

	err := sender.Send(context.Background(), EmailMessage{To: "ops@example.com"})

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Provider != "sendgrid" || pe.StatusCode != http.StatusForbidden || pe.RequestID != "msg-1" {
		t.Fatalf("unexpected provider error %+v", pe)
	}
}

func TestSendGridSender_TransportError(t *testing.T) {
	fake := &fakeSendGrid{err: errors.New("dial tcp: timeout")}
	sender := &SendGridSender{client: fake, logger: logging.New("error")}

	err := sender.Send(context.Background(), EmailMessage{To: "ops@example.com"})
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		t.Fatalf("transport failures should not carry a provider status, got %+v", pe)
	}
}

func TestStubEmailSender_Send(t *testing.T) {
	sender := NewStubEmailSender(nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test Subject",
		Body:    "Test body",
	})
	if err != nil {
		t.Errorf("stub sender should not return error, got: %v", err)
	}
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	id := "ses-1"
	return &sesv2.SendEmailOutput{MessageId: &id}, nil
}

func TestSESSender_Send(t *testing.T) {
	fake := &fakeSES{}
	sender := NewSESSender(fake, SESConfig{FromEmail: "from@example.com", FromName: "Site"}, logging.New("error"))

	err := sender.Send(context.Background(), EmailMessage{
		To:      "ops@example.com",
		ReplyTo: "lead@example.com",
		Subject: "Hello",
		Body:    "text",
		HTML:    "<p>html</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := *fake.input.FromEmailAddress; got != "Site <from@example.com>" {
		t.Fatalf("unexpected from %q", got)
	}
	if len(fake.input.ReplyToAddresses) != 1 || fake.input.ReplyToAddresses[0] != "lead@example.com" {
		t.Fatalf("unexpected reply-to %v", fake.input.ReplyToAddresses)
	}
	if fake.input.Content.Simple.Body.Html == nil || fake.input.Content.Simple.Body.Text == nil {
		t.Fatal("expected both html and text bodies")
	}
}

func TestSESSender_ResponseErrorIsProviderError(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "MessageRejected", Message: "Email address is not verified."}
	fake := &fakeSES{err: &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusBadRequest}},
			Err:      apiErr,
		},
		RequestID: "req-42",
	}}
	sender := NewSESSender(fake, SESConfig{FromEmail: "from@example.com"}, logging.New("error"))

	err := sender.Send(context.Background(), EmailMessage{To: "ops@example.com"})

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Provider != "ses" || pe.StatusCode != http.StatusBadRequest || pe.RequestID != "req-42" {
		t.Fatalf("unexpected provider error %+v", pe)
	}
	if pe.Code != "MessageRejected" || pe.Details != "Email address is not verified." {
		t.Fatalf("unexpected api error mapping %+v", pe)
	}
}

func TestNewSESSender_NilClient(t *testing.T) {
	if NewSESSender(nil, SESConfig{}, nil) != nil {
		t.Fatal("expected nil sender without a client")
	}
}
