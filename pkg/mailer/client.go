package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Sender delivers a single plain-text email.
type Sender interface {
	Send(ctx context.Context, subject, body, recipient string) error
}

// Client talks to an HTTP mail relay.
type Client struct {
	BaseURL    string
	Username   string
	Password   string
	Path       string
	From       string
	HTTPClient *http.Client
}

type SendMailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

type SendMailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
		Status    string `json:"status"`
	} `json:"data"`
}

func NewClient(baseURL, username, password, path, from string) *Client {
	return &Client{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		Path:     path,
		From:     from,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendMail posts the message to the relay and returns its answer.
func (c *Client) SendMail(ctx context.Context, subject, body string, recipients ...string) (*SendMailResponse, error) {
	requestData := SendMailRequest{
		From:    c.From,
		To:      recipients,
		Subject: subject,
		Body:    body,
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := fmt.Sprintf("%s/%s/send", c.BaseURL, c.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.Username, c.Password)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mail relay returned %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}

	var response SendMailResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !response.Success {
		return &response, fmt.Errorf("mail relay rejected message: %s", response.Message)
	}

	return &response, nil
}

// Send implements Sender.
func (c *Client) Send(ctx context.Context, subject, body, recipient string) error {
	_, err := c.SendMail(ctx, subject, body, recipient)
	return err
}

// LogSender writes messages to the log instead of delivering them. Used when
// no relay is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, subject, body, recipient string) error {
	log.Printf("Mail to %s: %s\n%s", recipient, subject, body)
	return nil
}
