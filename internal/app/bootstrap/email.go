package bootstrap

import (
	"fmt"
	"strings"

	appconfig "github.com/mainstreetlabs/siteapi/internal/config"
	"github.com/mainstreetlabs/siteapi/internal/notify"
	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

// BuildEmailSender picks the outbound email provider from EMAIL_PROVIDER.
// sesClient is only consulted for the "ses" provider. A nil sender with a nil
// error means email delivery is disabled.
func BuildEmailSender(cfg *appconfig.Config, sesClient notify.SESAPI, logger *logging.Logger) (notify.EmailSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.EmailProvider))
	switch provider {
	case "", "auto":
		if strings.TrimSpace(cfg.SendGridAPIKey) == "" {
			logger.Warn("no email provider configured; email delivery disabled")
			return nil, nil
		}
		return buildSendGrid(cfg, logger), nil
	case "sendgrid":
		if strings.TrimSpace(cfg.SendGridAPIKey) == "" {
			return nil, fmt.Errorf("bootstrap: EMAIL_PROVIDER=sendgrid requires SENDGRID_API_KEY")
		}
		return buildSendGrid(cfg, logger), nil
	case "ses":
		if sesClient == nil {
			return nil, fmt.Errorf("bootstrap: EMAIL_PROVIDER=ses requires an SES client")
		}
		logger.Info("email provider configured", "provider", "ses")
		return notify.NewSESSender(sesClient, notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger), nil
	case "stub":
		logger.Info("email provider configured", "provider", "stub")
		return notify.NewStubEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown EMAIL_PROVIDER %q", provider)
	}
}

func buildSendGrid(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	logger.Info("email provider configured", "provider", "sendgrid")
	return notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.EmailFromAddress,
		FromName:  cfg.EmailFromName,
	}, logger)
}
