// Package civicrm implements the CRM sink against a CiviCRM REST endpoint.
// CiviCRM authenticates with a site key and a user key passed as query
// parameters; members are matched on a custom field holding the Parliament
// id.
package civicrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
)

// Ensure Client implements the sink port.
var _ driven.CRMSink = (*Client)(nil)

// Custom field names of the CiviCRM install. These differ per deployment;
// the defaults match ours.
const (
	fieldParliamentID = "custom_68"
	fieldParty        = "custom_70"
	fieldHouse        = "custom_65"
	fieldStatus       = "custom_64"
)

// DefaultTimeout is the per-request HTTP timeout.
const DefaultTimeout = 30 * time.Second

// Client talks to a CiviCRM REST endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	siteKey string
	userKey string
}

// New creates a CiviCRM client. Returns domain.ErrCRMUnavailable when the
// endpoint or keys are not configured.
func New(baseURL, siteKey, userKey string) (*Client, error) {
	if baseURL == "" || siteKey == "" || userKey == "" {
		return nil, domain.ErrCRMUnavailable
	}
	return &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		baseURL: baseURL,
		siteKey: siteKey,
		userKey: userKey,
	}, nil
}

// SetHTTPClient overrides the transport, used by tests.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// restResponse is the envelope CiviCRM wraps every reply in.
type restResponse struct {
	Count        int    `json:"count"`
	IsError      int    `json:"is_error"`
	ErrorMessage string `json:"error_message"`
}

// Exists reports whether the CRM holds a contact for the parliament id.
func (c *Client) Exists(ctx context.Context, parliamentID int) (bool, error) {
	resp, err := c.call(ctx, http.MethodGet, c.queryParams(parliamentID))
	if err != nil {
		return false, err
	}
	return resp.Count >= 1, nil
}

// Upsert creates the contact. If the CRM already holds more than one
// contact for the parliament id, nothing is created and UpsertDuplicate is
// returned so the caller can flag the id for manual cleanup.
func (c *Client) Upsert(ctx context.Context, contact domain.Contact) (driven.UpsertResult, error) {
	lookup, err := c.call(ctx, http.MethodGet, c.queryParams(contact.ParliamentID))
	if err != nil {
		return driven.UpsertOK, err
	}
	if lookup.Count > 1 {
		return driven.UpsertDuplicate, nil
	}

	params := c.baseParams()
	params.Set("action", "create")
	params.Set("contact_type", "Individual")
	params.Set("contact_sub_type", "Member_of_UK_Parliament")
	params.Set("display_name", contact.DisplayName)
	params.Set("sort_name", contact.LastName+", "+contact.FirstName)
	params.Set("first_name", contact.FirstName)
	params.Set("last_name", contact.LastName)
	params.Set(fieldParliamentID, strconv.Itoa(contact.ParliamentID))
	params.Set(fieldParty, contact.Party)
	params.Set(fieldHouse, contact.House)
	params.Set(fieldStatus, "Active")

	if _, err := c.call(ctx, http.MethodPost, params); err != nil {
		return driven.UpsertOK, err
	}
	return driven.UpsertOK, nil
}

func (c *Client) queryParams(parliamentID int) url.Values {
	params := c.baseParams()
	params.Set("action", "get")
	params.Set("return", fieldParliamentID+",sort_name,first_name,last_name")
	params.Set(fieldParliamentID, strconv.Itoa(parliamentID))
	return params
}

func (c *Client) baseParams() url.Values {
	params := url.Values{}
	params.Set("entity", "Contact")
	params.Set("json", "1")
	params.Set("sequential", "1")
	params.Set("api_key", c.userKey)
	params.Set("key", c.siteKey)
	return params
}

func (c *Client) call(ctx context.Context, method string, params url.Values) (*restResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("civicrm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("civicrm: status %d", resp.StatusCode)
	}

	var decoded restResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("civicrm: decode response: %w", err)
	}
	if decoded.IsError != 0 {
		return nil, fmt.Errorf("civicrm: %s", decoded.ErrorMessage)
	}
	return &decoded, nil
}
