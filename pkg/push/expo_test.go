package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendDecodesReceipt(t *testing.T) {
	var received []Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"status":"ok","id":"receipt-1"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	receipt, err := client.Send(context.Background(), Message{
		To:    "ExponentPushToken[abc]",
		Title: "Leave approved",
		Body:  "Your annual leave was approved.",
	})
	require.NoError(t, err)
	assert.True(t, receipt.Ok())
	assert.Equal(t, "receipt-1", receipt.ID)

	require.Len(t, received, 1)
	assert.Equal(t, "default", received[0].Sound)
	assert.Equal(t, "high", received[0].Priority)
}

func TestClientSendBulkPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"status":"ok","id":"a"},{"status":"error","message":"DeviceNotRegistered"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	receipts, err := client.SendBulk(context.Background(), []Message{
		{To: "ExponentPushToken[one]", Title: "t1", Body: "b1"},
		{To: "ExponentPushToken[two]", Title: "t2", Body: "b2"},
	})
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.True(t, receipts[0].Ok())
	assert.False(t, receipts[1].Ok())
}

func TestClientSendMissingToken(t *testing.T) {
	client := NewClient("http://localhost:0", time.Second)
	_, err := client.Send(context.Background(), Message{Title: "no token"})
	require.Error(t, err)
}

func TestClientSendGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.Send(context.Background(), Message{To: "ExponentPushToken[x]", Title: "t", Body: "b"})
	require.Error(t, err)
}
