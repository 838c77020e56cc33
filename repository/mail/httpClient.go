package mailrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"stayin/util/httpx"
)

type httpRepo struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

// NewHTTP returns a mail repo that posts messages to a JSON mail API.
func NewHTTP(apiURL, apiKey, from string) Repo {
	return &httpRepo{apiURL: apiURL, apiKey: apiKey, from: from, client: httpx.Client()}
}

func (r *httpRepo) Send(ctx context.Context, msg Message) error {
	body := map[string]any{
		"from":    r.from,
		"to":      msg.To,
		"subject": msg.Subject,
		"text":    msg.Body,
	}
	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail api send failed: %s", resp.Status)
	}
	return nil
}

type logRepo struct{ log *slog.Logger }

// NewLog returns a mail repo that only logs messages. Used when no mail API
// is configured.
func NewLog(log *slog.Logger) Repo { return &logRepo{log: log} }

func (r *logRepo) Send(_ context.Context, msg Message) error {
	r.log.Info("mail (mock)", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
