// Package mail отправляет уведомления оператору фермы через SendGrid.
package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridClient инкапсулирует отправку писем через SendGrid.
type SendGridClient struct {
	apiKey string
	from   string
	to     string
}

// NewSendGridClient создаёт клиент уведомлений с фиксированным адресом оператора.
func NewSendGridClient(apiKey, from, to string) *SendGridClient {
	return &SendGridClient{
		apiKey: apiKey,
		from:   from,
		to:     to,
	}
}

// NotifyNewOrder отправляет оператору письмо о новой заявке.
// Сбой отправки не откатывает заказ: вызывающая сторона только логирует ошибку.
func (c *SendGridClient) NotifyNewOrder(ctx context.Context, kind, name, contact string, standard, lowChol int) error {
	if c == nil || c.apiKey == "" {
		return fmt.Errorf("sendgrid client not configured")
	}

	subject := fmt.Sprintf("Nová objednávka: %s", name)
	body := fmt.Sprintf(
		"Typ: %s\nJméno: %s\nKontakt: %s\nBěžná vejce: %d\nVejce se sníženým cholesterolem: %d\n",
		kind, name, contact, standard, lowChol,
	)

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail("Farma", c.from),
		subject,
		sgmail.NewEmail("", c.to),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	client := sendgrid.NewSendClient(c.apiKey)

	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", resp.StatusCode, resp.Body)
	}

	return nil
}
