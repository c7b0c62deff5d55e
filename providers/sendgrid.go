package providers

import (
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/modernwebbuilds/forkitt-api/models"
)

// SendgridClient sends transactional mail through the SendGrid v3 API.
type SendgridClient struct {
	client    *resty.Client
	apiKey    string
	fromEmail string
	fromName  string
	baseURL   string
}

func NewSendgridClient() *SendgridClient {
	return &SendgridClient{
		client:    resty.New().SetTimeout(15 * time.Second),
		apiKey:    os.Getenv("SENDGRID_API_KEY"),
		fromEmail: os.Getenv("FROM_EMAIL"),
		fromName:  os.Getenv("FROM_EMAIL_NAME"),
		baseURL:   "https://api.sendgrid.com",
	}
}

func (s *SendgridClient) Provider() string {
	return models.ProviderSendgrid
}

func (s *SendgridClient) Configured() bool {
	return s.apiKey != "" && s.fromEmail != ""
}

func (s *SendgridClient) SendEmail(to, subject, body string) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("sendgrid credentials are not configured")
	}

	payload := map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": to}}},
		},
		"from":    map[string]string{"email": s.fromEmail, "name": s.fromName},
		"subject": subject,
		"content": []map[string]string{
			{"type": "text/plain", "value": body},
		},
	}

	resp, err := s.client.R().
		SetAuthToken(s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(s.baseURL + "/v3/mail/send")
	if err != nil {
		return "", err
	}
	if resp.StatusCode() >= 300 {
		return "", fmt.Errorf("sendgrid mail send failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return resp.Header().Get("X-Message-Id"), nil
}
