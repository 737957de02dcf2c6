package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DocStoreClient uploads supporting documents to the external document store
// and returns a publicly dereferenceable link. Size limits are enforced by
// the caller before the bytes reach this client.
type DocStoreClient interface {
	Upload(ctx context.Context, content []byte, mimeType, filename, reservationNo string) (string, error)
}

type docStoreClient struct {
	http *HttpClient
}

func NewDocStoreClient(baseURL string) DocStoreClient {
	return &docStoreClient{
		http: NewHttpClient(baseURL),
	}
}

func (c *docStoreClient) Upload(ctx context.Context, content []byte, mimeType, filename, reservationNo string) (string, error) {
	path := fmt.Sprintf("/api/v1/documents?filename=%s&reservation_no=%s",
		url.QueryEscape(filename), url.QueryEscape(reservationNo))

	resp, err := c.http.POSTRaw(ctx, path, content, map[string]string{
		"Content-Type": mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("document upload: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("document upload: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := resp.DecodeJSON(&body); err != nil {
		return "", fmt.Errorf("document upload: decode response: %w", err)
	}
	if body.URL == "" {
		return "", fmt.Errorf("document upload: empty url")
	}
	return body.URL, nil
}
