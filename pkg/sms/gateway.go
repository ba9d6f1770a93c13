package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/pkg/validator"
)

// Gateway sends text messages
type Gateway interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

// Config holds configuration for the HTTP SMS gateway
type Config struct {
	APIURL   string
	Username string
	APIKey   string
	SenderID string
}

// HTTPGateway sends SMS through a bulk messaging API that takes
// form-encoded username/to/message/from and an apiKey header.
type HTTPGateway struct {
	config    Config
	client    *http.Client
	validator *validator.PhoneValidator
	logger    *logrus.Logger
}

// NewHTTPGateway creates a new HTTP SMS gateway client
func NewHTTPGateway(config Config, logger *logrus.Logger) *HTTPGateway {
	return &HTTPGateway{
		config:    config,
		client:    &http.Client{Timeout: 15 * time.Second},
		validator: validator.NewPhoneValidator(),
		logger:    logger,
	}
}

type sendResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			Number    string `json:"number"`
			Status    string `json:"status"`
			MessageID string `json:"messageId"`
			Cost      string `json:"cost"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// Send delivers one message and returns the provider message id
func (g *HTTPGateway) Send(ctx context.Context, phone, message string) (string, error) {
	msisdn, err := g.validator.ToInternational(phone)
	if err != nil {
		return "", fmt.Errorf("invalid phone number: %w", err)
	}

	form := url.Values{}
	form.Set("username", g.config.Username)
	form.Set("to", "+"+msisdn)
	form.Set("message", message)
	if g.config.SenderID != "" {
		form.Set("from", g.config.SenderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", g.config.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read SMS response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("SMS gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed sendResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse SMS response: %w", err)
	}

	if len(parsed.SMSMessageData.Recipients) == 0 {
		return "", fmt.Errorf("SMS sending failed: %s", parsed.SMSMessageData.Message)
	}

	recipient := parsed.SMSMessageData.Recipients[0]
	if recipient.Status != "Success" {
		return "", fmt.Errorf("SMS sending failed: %s", recipient.Status)
	}

	g.logger.WithFields(logrus.Fields{
		"to":         msisdn,
		"message_id": recipient.MessageID,
		"cost":       recipient.Cost,
	}).Info("SMS sent")

	return recipient.MessageID, nil
}

// DevGateway logs messages instead of sending them
type DevGateway struct {
	logger    *logrus.Logger
	validator *validator.PhoneValidator
}

// NewDevGateway creates a gateway for local development
func NewDevGateway(logger *logrus.Logger) *DevGateway {
	return &DevGateway{logger: logger, validator: validator.NewPhoneValidator()}
}

// Send logs the message
func (g *DevGateway) Send(ctx context.Context, phone, message string) (string, error) {
	msisdn, err := g.validator.ToInternational(phone)
	if err != nil {
		return "", fmt.Errorf("invalid phone number: %w", err)
	}

	id := fmt.Sprintf("dev-%d", time.Now().UnixNano())
	g.logger.WithFields(logrus.Fields{
		"to":         msisdn,
		"message_id": id,
		"message":    message,
	}).Info("SMS (dev mode, not sent)")
	return id, nil
}

// NewGateway picks the gateway for the configured mode
func NewGateway(mode string, config Config, logger *logrus.Logger) Gateway {
	if mode == "production" {
		return NewHTTPGateway(config, logger)
	}
	return NewDevGateway(logger)
}
