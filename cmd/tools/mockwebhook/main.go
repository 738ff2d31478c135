package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// event mirrors the subset of a PayPal capture notification the service reads.
type event struct {
	ID           string    `json:"id"`
	EventType    string    `json:"event_type"`
	ResourceType string    `json:"resource_type"`
	CreateTime   time.Time `json:"create_time"`
	Summary      string    `json:"summary"`
	Resource     resource  `json:"resource"`
}

type resource struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	Amount            amount `json:"amount"`
	SupplementaryData struct {
		RelatedIDs struct {
			OrderID string `json:"order_id"`
		} `json:"related_ids"`
	} `json:"supplementary_data"`
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

func main() {
	url := flag.String("url", "http://localhost:8080/api/webhooks/paypal", "Webhook URL")
	eventID := flag.String("event-id", "WH-"+uuid.NewString(), "Event ID (reuse it to test deduplication)")
	eventType := flag.String("type", "PAYMENT.CAPTURE.COMPLETED", "PAYMENT.CAPTURE.COMPLETED or PAYMENT.CAPTURE.DENIED")
	orderID := flag.String("order-id", "", "PayPal order id the capture belongs to (required)")
	captureID := flag.String("capture-id", "", "Capture id (random when empty)")
	value := flag.String("amount", "10.00", "Captured amount")
	currency := flag.String("currency", "USD", "Currency code")
	dryRun := flag.Bool("dry-run", false, "Only print the payload, don't send")
	flag.Parse()

	if *orderID == "" {
		fmt.Fprintln(os.Stderr, "Error: -order-id is required")
		os.Exit(2)
	}
	if *captureID == "" {
		*captureID = "CAP-" + uuid.NewString()[:8]
	}

	status := "COMPLETED"
	if *eventType == "PAYMENT.CAPTURE.DENIED" {
		status = "DECLINED"
	}

	ev := event{
		ID:           *eventID,
		EventType:    *eventType,
		ResourceType: "capture",
		CreateTime:   time.Now().UTC(),
		Summary:      "Payment capture " + status,
		Resource: resource{
			ID:     *captureID,
			Status: status,
			Amount: amount{CurrencyCode: *currency, Value: *value},
		},
	}
	ev.Resource.SupplementaryData.RelatedIDs.OrderID = *orderID

	body, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Body: %s\n", body)

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	// Unsigned: the server must run with WEBHOOK_ALLOW_UNVERIFIED=true.
	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Paypal-Transmission-Id", uuid.NewString())
	req.Header.Set("Paypal-Transmission-Time", time.Now().UTC().Format(time.RFC3339))

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("\nStatus: %d\nResponse: %s\n", resp.StatusCode, respBody)
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
