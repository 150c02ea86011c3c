package razorpay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Order is the gateway's order representation, as returned by the orders API.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// OrderRequest is the payload for order creation. Amount is in the currency's
// smallest unit (paise for INR).
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Client talks to the Razorpay REST API with basic auth.
type Client struct {
	http      *fasthttp.Client
	baseURL   string
	authToken string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewClient(baseURL, keyID, keySecret string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:      &fasthttp.Client{},
		baseURL:   baseURL,
		authToken: base64.StdEncoding.EncodeToString([]byte(keyID + ":" + keySecret)),
		timeout:   timeout,
		logger:    logger,
	}
}

// CreateOrder registers a new order with the gateway.
func (c *Client) CreateOrder(ctx context.Context, orderReq OrderRequest) (*Order, error) {
	body, err := json.Marshal(orderReq)
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/orders")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Basic "+c.authToken)
	req.SetBody(body)

	if err := c.http.DoTimeout(req, resp, c.deadlineTimeout(ctx)); err != nil {
		return nil, fmt.Errorf("razorpay order request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn("razorpay order creation rejected",
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", resp.Body()))
		return nil, fmt.Errorf("razorpay order creation failed with status %d", resp.StatusCode())
	}

	var order Order
	if err := json.Unmarshal(resp.Body(), &order); err != nil {
		return nil, fmt.Errorf("razorpay order response: %w", err)
	}
	return &order, nil
}

// deadlineTimeout caps the configured timeout by the context deadline so the
// request never outlives its caller.
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
