package providers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/modernwebbuilds/forkitt-api/models"
)

// TwilioClient talks to the Twilio Messages API for WhatsApp and SMS. It
// satisfies both the WhatsappSender and SMSSender dispatcher interfaces.
type TwilioClient struct {
	client          *resty.Client
	accountSID      string
	authToken       string
	whatsappFrom    string
	smsFrom         string
	optinContentSID string
	baseURL         string
}

type twilioMessage struct {
	Sid          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func NewTwilioClient() *TwilioClient {
	return &TwilioClient{
		client:          resty.New().SetTimeout(15 * time.Second),
		accountSID:      os.Getenv("TWILIO_ACCOUNT_SID"),
		authToken:       os.Getenv("TWILIO_AUTH_TOKEN"),
		whatsappFrom:    os.Getenv("TWILIO_WHATSAPP_FROM"),
		smsFrom:         os.Getenv("TWILIO_SMS_FROM"),
		optinContentSID: os.Getenv("TWILIO_OPTIN_CONTENT_SID"),
		baseURL:         "https://api.twilio.com",
	}
}

func (t *TwilioClient) Provider() string {
	return models.ProviderTwilio
}

func (t *TwilioClient) Configured() bool {
	return t.accountSID != "" && t.authToken != ""
}

func (t *TwilioClient) messagesURL() string {
	return fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
}

func (t *TwilioClient) postMessage(form map[string]string) (string, error) {
	if !t.Configured() {
		return "", fmt.Errorf("twilio credentials are not configured")
	}

	var msg twilioMessage
	resp, err := t.client.R().
		SetBasicAuth(t.accountSID, t.authToken).
		SetFormData(form).
		SetResult(&msg).
		Post(t.messagesURL())
	if err != nil {
		return "", err
	}
	if resp.StatusCode() >= 300 {
		return "", fmt.Errorf("twilio message request failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return msg.Sid, nil
}

func (t *TwilioClient) SendWhatsapp(to, body string) (string, error) {
	return t.postMessage(map[string]string{
		"From": "whatsapp:" + t.whatsappFrom,
		"To":   "whatsapp:" + to,
		"Body": body,
	})
}

// SendWhatsappTemplate sends the pre-approved opt-in content template, the
// only message Twilio allows outside an open session.
func (t *TwilioClient) SendWhatsappTemplate(to string, vars map[string]string) (string, error) {
	if t.optinContentSID == "" {
		return "", fmt.Errorf("TWILIO_OPTIN_CONTENT_SID is not configured")
	}
	form := map[string]string{
		"From":       "whatsapp:" + t.whatsappFrom,
		"To":         "whatsapp:" + to,
		"ContentSid": t.optinContentSID,
	}
	if len(vars) > 0 {
		raw, err := json.Marshal(vars)
		if err != nil {
			return "", err
		}
		form["ContentVariables"] = string(raw)
	}
	return t.postMessage(form)
}

func (t *TwilioClient) SendSMS(to, body string) (string, error) {
	return t.postMessage(map[string]string{
		"From": t.smsFrom,
		"To":   to,
		"Body": body,
	})
}

// FetchMessageStatus looks up the provider-reported delivery status of a
// previously sent message (queued, sent, delivered, undelivered, failed...).
func (t *TwilioClient) FetchMessageStatus(sid string) (string, error) {
	if !t.Configured() {
		return "", fmt.Errorf("twilio credentials are not configured")
	}

	var msg twilioMessage
	url := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages/%s.json", t.baseURL, t.accountSID, sid)
	resp, err := t.client.R().
		SetBasicAuth(t.accountSID, t.authToken).
		SetResult(&msg).
		Get(url)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() >= 300 {
		return "", fmt.Errorf("twilio status request failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return msg.Status, nil
}

// ValidateSignature checks the X-Twilio-Signature header on an inbound
// webhook: HMAC-SHA1 of the full URL concatenated with the sorted POST
// parameters, keyed with the auth token.
func (t *TwilioClient) ValidateSignature(url string, params map[string]string, signature string) bool {
	if t.authToken == "" {
		return false
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	payload := url
	for _, k := range keys {
		payload += k + params[k]
	}

	mac := hmac.New(sha1.New, []byte(t.authToken))
	mac.Write([]byte(payload))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
