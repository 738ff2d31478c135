package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Mootosamy/backend-chronopost/internal/mailer"
	"github.com/Mootosamy/backend-chronopost/internal/paypal"
)

const company = "Chronopost Mauritius Ltd"

// PaymentEmail is everything the customer needs to pay one link.
type PaymentEmail struct {
	RecipientEmail  string
	OrderName       string
	OrderNumber     string
	Amount          string
	Currency        string
	ClientFirstName string
	ClientLastName  string
	PaymentLink     string
	Reference       string
}

// Result is reported back to the operator. Delivery failures are not errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Service struct {
	mailer   mailer.Service
	from     string
	fromName string
	logger   *slog.Logger
}

func NewService(m mailer.Service, from, fromName string) *Service {
	if fromName == "" {
		fromName = company
	}
	return &Service{mailer: m, from: from, fromName: fromName, logger: slog.Default()}
}

func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

type view struct {
	PaymentEmail
	Company         string
	FormattedAmount string
}

func render(p PaymentEmail) (html, text string, err error) {
	v := view{PaymentEmail: p, Company: company, FormattedAmount: FormatAmount(p.Amount)}

	var hb, tb bytes.Buffer
	if err := htmlTmpl.Execute(&hb, v); err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	if err := textTmpl.Execute(&tb, v); err != nil {
		return "", "", fmt.Errorf("render text: %w", err)
	}
	return hb.String(), tb.String(), nil
}

// Preview renders the HTML body for p without sending anything.
func (s *Service) Preview(p PaymentEmail) (string, error) {
	html, _, err := render(p)
	return html, err
}

// SamplePaymentEmail feeds the preview endpoint.
func SamplePaymentEmail() PaymentEmail {
	return PaymentEmail{
		OrderName:       "Sample Order",
		OrderNumber:     "ORD-12345",
		Amount:          "1000.00",
		Currency:        "Rs",
		ClientFirstName: "John",
		ClientLastName:  "Doe",
		PaymentLink:     "https://example.com/payment/PAY-123",
		Reference:       "REF-123",
	}
}

func (s *Service) SendPaymentLink(ctx context.Context, p PaymentEmail) Result {
	html, text, err := render(p)
	if err != nil {
		s.logger.ErrorContext(ctx, "payment email render failed", "err", err)
		return Result{Error: "Failed to send email: " + err.Error()}
	}

	err = s.mailer.Send(ctx, mailer.Email{
		FromName: s.fromName,
		From:     s.from,
		To:       []string{p.RecipientEmail},
		Subject:  "Payment Request - Order " + p.OrderNumber,
		TextBody: text,
		HTMLBody: html,
	})
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "payment email sent", "to", p.RecipientEmail, "order_number", p.OrderNumber)
		return Result{Success: true, Message: "Payment email sent successfully to " + p.RecipientEmail}
	case errors.Is(err, mailer.ErrNotConfigured):
		s.logger.WarnContext(ctx, "smtp not configured, email not sent", "to", p.RecipientEmail)
		return Result{Error: "SMTP credentials not configured. Please set SMTP_HOST and SMTP_PASSWORD."}
	case errors.Is(err, mailer.ErrAuth):
		s.logger.ErrorContext(ctx, "smtp authentication failed", "err", err)
		return Result{Error: "SMTP authentication failed. Please check your email credentials."}
	default:
		s.logger.ErrorContext(ctx, "payment email failed", "to", p.RecipientEmail, "err", err)
		return Result{Error: "Failed to send email: " + err.Error()}
	}
}

// FormatAmount renders an amount the Mauritian way: space-grouped thousands
// and a decimal comma ("1 234,56"). Unparseable input is returned as given.
func FormatAmount(amount string) string {
	n, err := paypal.NormalizeAmount(amount)
	if err != nil {
		return amount
	}
	whole, frac, _ := strings.Cut(n, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String() + "," + frac
}
