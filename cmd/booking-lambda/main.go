package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/mainstreetlabs/siteapi/cmd/mainconfig"
	"github.com/mainstreetlabs/siteapi/internal/booking"
	appconfig "github.com/mainstreetlabs/siteapi/internal/config"
	"github.com/mainstreetlabs/siteapi/internal/notify"
	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

const bookingPath = "/api/ai-agents/booking"

func main() {
	cfg := appconfig.Load()
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	mode, err := booking.ParseNameMatching(cfg.BookingNameMatching)
	if err != nil {
		panic(err)
	}

	var notifier booking.CompletionNotifier
	if cfg.BookingNotifyEmail != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
		if err != nil {
			panic(err)
		}
		sender := notify.NewSESSender(mainconfig.NewSESClient(awsCfg, cfg), notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		notifier = notify.NewService(sender, notify.ServiceConfig{BookingRecipient: cfg.BookingNotifyEmail}, logger)
	}

	handler := booking.NewHandler(booking.NewEngine(booking.WithNameMatching(mode)), notifier, nil, logger)
	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, handler, evt)
	})
}

func handle(ctx context.Context, handler http.Handler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	if path == "/health" || path == "/_health" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Body: "ok"}, nil
	}

	if path != bookingPath {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound, Headers: corsHeaders()}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid body", Headers: corsHeaders()}, nil
	}

	req, err := http.NewRequestWithContext(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError, Headers: corsHeaders()}, nil
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}

	rw := newResponseWriter()
	handler.ServeHTTP(rw, req)

	out := events.APIGatewayV2HTTPResponse{
		StatusCode: rw.status,
		Body:       rw.body.String(),
		Headers:    corsHeaders(),
	}
	if ct := rw.header.Get("Content-Type"); ct != "" {
		out.Headers["content-type"] = ct
	}
	return out, nil
}

func corsHeaders() map[string]string {
	return map[string]string{
		"access-control-allow-origin":  "*",
		"access-control-allow-methods": "POST, OPTIONS",
		"access-control-allow-headers": "Content-Type",
	}
}

// responseWriter buffers a handler's response for the API Gateway payload.
type responseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: http.Header{}, status: http.StatusOK}
}

func (w *responseWriter) Header() http.Header { return w.header }

func (w *responseWriter) Write(b []byte) (int, error) { return w.body.Write(b) }

func (w *responseWriter) WriteHeader(status int) { w.status = status }

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(evt.Body)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}
