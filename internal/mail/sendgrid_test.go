package mail

import (
	"context"
	"testing"
)

func TestNotifyNewOrderUnconfigured(t *testing.T) {
	c := NewSendGridClient("", "farm@example.com", "operator@example.com")

	err := c.NotifyNewOrder(context.Background(), "order", "Jana", "jana@example.com", 10, 0)
	if err == nil {
		t.Fatalf("unconfigured client must return an error")
	}
}
