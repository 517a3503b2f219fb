package parliament

import (
	"context"
	"fmt"

	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
)

// Ensure Client implements both lookup ports.
var (
	_ driven.MemberSource       = (*Client)(nil)
	_ driven.ConstituencySource = (*Client)(nil)
)

// lookupResponse is the envelope of the id-indexed lookups.
type lookupResponse struct {
	Value map[string]any `json:"value"`
}

// MemberByID fetches one legislator record. A 404 maps to
// domain.ErrNotFound: absence is the expected common case when probing a
// bounded id-space.
func (c *Client) MemberByID(ctx context.Context, id int) (domain.RawRecord, error) {
	return c.lookup(ctx, fmt.Sprintf("%s/Members/%d", c.membersBase, id))
}

// ConstituencyByID fetches one constituency record with the same not-found
// contract as MemberByID.
func (c *Client) ConstituencyByID(ctx context.Context, id int) (domain.RawRecord, error) {
	return c.lookup(ctx, fmt.Sprintf("%s/Location/Constituency/%d", c.membersBase, id))
}

func (c *Client) lookup(ctx context.Context, endpoint string) (domain.RawRecord, error) {
	var resp lookupResponse
	if err := c.getJSON(ctx, endpoint, nil, &resp); err != nil {
		if IsNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if resp.Value == nil {
		return nil, fmt.Errorf("%w: empty value envelope", domain.ErrSchema)
	}
	return domain.RawRecord(resp.Value), nil
}
