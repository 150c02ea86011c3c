package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templateMessage struct {
	To            string `json:"to"`
	Type          string `json:"type"`
	RecipientType string `json:"recipient_type"`
	Template      struct {
		Name     string `json:"name"`
		Language struct {
			Code string `json:"code"`
		} `json:"language"`
		Components []templateComponent `json:"components,omitempty"`
	} `json:"template"`
}

// Client sends template messages through the WhatsApp reseller API.
// Delivery is fire-and-forget: callers queue retries, the client only reports
// whether this attempt reached the gateway.
type Client struct {
	http       *fasthttp.Client
	baseURL    string
	apiKey     string
	wabaNumber string
	timeout    time.Duration
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey, wabaNumber string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:       &fasthttp.Client{},
		baseURL:    baseURL,
		apiKey:     apiKey,
		wabaNumber: wabaNumber,
		timeout:    timeout,
		logger:     logger,
	}
}

// SendTemplateMessage posts one template message with positional body params.
func (c *Client) SendTemplateMessage(ctx context.Context, to, templateName string, params []string) error {
	msg := templateMessage{
		To:            to,
		Type:          "template",
		RecipientType: "individual",
	}
	msg.Template.Name = templateName
	msg.Template.Language.Code = "en"
	if len(params) > 0 {
		component := templateComponent{Type: "body"}
		for _, p := range params {
			component.Parameters = append(component.Parameters, templateParameter{Type: "text", Text: p})
		}
		msg.Template.Components = []templateComponent{component}
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/message")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("wabaNumber", c.wabaNumber)
	req.Header.Set("Key", c.apiKey)
	req.SetBody(body)

	if err := c.http.DoTimeout(req, resp, c.deadlineTimeout(ctx)); err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn("whatsapp message rejected",
			zap.String("template", templateName),
			zap.Int("status", resp.StatusCode()))
		return fmt.Errorf("whatsapp send failed with status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) deadlineTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}
