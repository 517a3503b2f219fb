package parliament

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
)

// DefaultTake is the result-count ceiling requested per window call. The
// windowing keeps real result sets far below it; the large value just
// disables remote paging within a window.
const DefaultTake = 1000000

const windowDateLayout = "2006-01-02"

// Ensure Client implements the source port.
var _ driven.QuestionSource = (*Client)(nil)

// questionsResponse is the envelope of the written-questions search.
type questionsResponse struct {
	Results []struct {
		Value map[string]any `json:"value"`
	} `json:"results"`
}

// FetchWindow returns the raw written-question records for one date window.
// Both bounds are sent inclusively. A window with no questions returns an
// empty slice.
func (c *Client) FetchWindow(ctx context.Context, w domain.DateWindow, filter driven.QuestionFilter) ([]domain.RawRecord, error) {
	params := url.Values{}
	params.Set("take", strconv.Itoa(DefaultTake))

	from := w.From.Format(windowDateLayout)
	to := w.To.Format(windowDateLayout)

	switch filter {
	case driven.ByAnswered:
		params.Set("answeredWhenFrom", from)
		params.Set("answeredWhenTo", to)
		params.Set("answered", "Answered")
	case driven.ByTabled:
		params.Set("tabledWhenFrom", from)
		params.Set("tabledWhenTo", to)
	default:
		return nil, fmt.Errorf("%w: question filter %d", domain.ErrInvalidInput, filter)
	}

	var resp questionsResponse
	endpoint := c.questionsBase + "/writtenquestions/questions"
	if err := c.getJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}

	records := make([]domain.RawRecord, 0, len(resp.Results))
	for _, result := range resp.Results {
		if result.Value == nil {
			continue
		}
		records = append(records, domain.RawRecord(result.Value))
	}
	return records, nil
}
