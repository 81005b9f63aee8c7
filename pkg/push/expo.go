package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultGatewayURL is the Expo push endpoint used by the mobile client.
const DefaultGatewayURL = "https://exp.host/--/api/v2/push/send"

// Message is the payload accepted by the push gateway.
type Message struct {
	To       string                 `json:"to"`
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Sound    string                 `json:"sound,omitempty"`
	Priority string                 `json:"priority,omitempty"`
}

// Receipt is the per-token delivery acknowledgment returned by the gateway.
type Receipt struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Ok reports whether the gateway accepted the message.
func (r Receipt) Ok() bool {
	return r.Status == "ok"
}

// Client talks to the Expo push gateway.
type Client struct {
	gatewayURL string
	http       *http.Client
}

// NewClient builds a push client. An empty gatewayURL falls back to the
// public Expo endpoint.
func NewClient(gatewayURL string, timeout time.Duration) *Client {
	if gatewayURL == "" {
		gatewayURL = DefaultGatewayURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		gatewayURL: gatewayURL,
		http:       &http.Client{Timeout: timeout},
	}
}

// Send delivers a single message and returns the gateway receipt.
func (c *Client) Send(ctx context.Context, msg Message) (*Receipt, error) {
	receipts, err := c.SendBulk(ctx, []Message{msg})
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, fmt.Errorf("push gateway returned no receipt")
	}
	return &receipts[0], nil
}

// SendBulk delivers a batch of messages in one request. The gateway returns
// one receipt per message, in order.
func (c *Client) SendBulk(ctx context.Context, msgs []Message) ([]Receipt, error) {
	if len(msgs) == 0 {
		return nil, nil
	}
	for i := range msgs {
		if msgs[i].To == "" {
			return nil, fmt.Errorf("push message %d missing recipient token", i)
		}
		if msgs[i].Sound == "" {
			msgs[i].Sound = "default"
		}
		if msgs[i].Priority == "" {
			msgs[i].Priority = "high"
		}
	}

	body, err := json.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("marshal push messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("push gateway error %s: %s", resp.Status, string(raw))
	}

	var out struct {
		Data []Receipt `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode push gateway response: %w", err)
	}
	return out.Data, nil
}
