// Package rest fetches collections from the upstream HTTP API.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kindra/internal/core"
)

// maxBodyBytes bounds upstream responses so a misbehaving endpoint cannot
// exhaust memory.
const maxBodyBytes = 16 << 20

const defaultTimeout = 15 * time.Second

// Collection paths on the upstream API.
var endpoints = map[string]string{
	core.CollectionDonations:  "/api/v1/donations/",
	core.CollectionCampaigns:  "/api/v1/donations/campaigns/",
	core.CollectionVolunteers: "/api/v1/volunteers/",
	core.CollectionTasks:      "/api/v1/volunteers/tasks/",
	core.CollectionEvents:     "/api/v1/volunteers/events/",
	core.CollectionCases:      "/api/v1/cases/cases/",
	core.CollectionChildren:   "/api/v1/cases/children/",
	core.CollectionFamilies:   "/api/v1/cases/families/",
	core.CollectionShelters:   "/api/v1/shelters/",
	core.CollectionIncidents:  "/api/v1/shelters/incidents/",
	core.CollectionSummary:    "/api/v1/reporting/dashboard/",
}

// Client fetches collections over HTTP. Responses are decoded leniently:
// unknown fields are ignored and malformed scalar values decay to zero
// values instead of failing the whole collection.
type Client struct {
	base   *url.URL
	token  string
	http   *http.Client
	logger *slog.Logger
}

func NewClient(baseURL, serviceToken string, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:   base,
		token:  serviceToken,
		http:   &http.Client{Timeout: defaultTimeout},
		logger: logger,
	}, nil
}

// Fetch retrieves one collection.
func (c *Client) Fetch(ctx context.Context, collection string) (any, error) {
	path, ok := endpoints[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownCollection, collection)
	}

	switch collection {
	case core.CollectionDonations:
		return fetchList[core.Donation](ctx, c, collection, path)
	case core.CollectionCampaigns:
		return fetchList[core.Campaign](ctx, c, collection, path)
	case core.CollectionVolunteers:
		return fetchList[core.Volunteer](ctx, c, collection, path)
	case core.CollectionTasks:
		return fetchList[core.Task](ctx, c, collection, path)
	case core.CollectionEvents:
		return fetchList[core.Event](ctx, c, collection, path)
	case core.CollectionCases:
		return fetchList[core.Case](ctx, c, collection, path)
	case core.CollectionChildren:
		return fetchList[core.Child](ctx, c, collection, path)
	case core.CollectionFamilies:
		return fetchList[core.Family](ctx, c, collection, path)
	case core.CollectionShelters:
		return fetchList[core.Shelter](ctx, c, collection, path)
	case core.CollectionIncidents:
		return fetchList[core.Incident](ctx, c, collection, path)
	case core.CollectionSummary:
		var summary core.Summary
		if err := c.getJSON(ctx, path, &summary); err != nil {
			return nil, err
		}
		return summary, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownCollection, collection)
	}
}

func fetchList[T any](ctx context.Context, c *Client, collection, path string) ([]T, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	records, err := decodeList[T](body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	c.logger.DebugContext(ctx, "Fetched collection",
		"collection", collection,
		"records", len(records))
	return records, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get %s: upstream returned %d", path, resp.StatusCode)
	}
	return body, nil
}

// decodeList accepts both a bare JSON array and the paginated envelope the
// upstream uses ({"count": n, "results": [...]}).
func decodeList[T any](body []byte) ([]T, error) {
	var list []T
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var envelope struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}
