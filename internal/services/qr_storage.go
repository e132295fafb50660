package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"booking-system/utils"
)

// HTTPQRStorage renders and stores ticket QR artifacts through the
// external media service and returns the durable URL of the image.
type HTTPQRStorage struct {
	baseURL string
	client  *http.Client
	breaker *utils.CircuitBreaker
}

func NewHTTPQRStorage(baseURL string) *HTTPQRStorage {
	return &HTTPQRStorage{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: utils.NewCircuitBreaker("qr-storage"),
	}
}

func (s *HTTPQRStorage) StoreTicketQR(ctx context.Context, ticketUUID string) (string, error) {
	payload, err := json.Marshal(map[string]string{"ticket_uuid": ticketUUID})
	if err != nil {
		return "", err
	}

	var url string
	err = s.breaker.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			s.baseURL+"/tickets/"+ticketUUID+"/qr", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("qr storage returned %d", resp.StatusCode)
		}

		var body struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decode qr storage response: %w", err)
		}
		url = body.URL
		return nil
	})
	if err != nil {
		return "", err
	}
	return url, nil
}
