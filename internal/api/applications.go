package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/go-querystring/query"

	"github.com/nhle/visadesk/internal/model"
)

// ApplicationFilter narrows the applications listing. Zero values are
// omitted from the query string.
type ApplicationFilter struct {
	Status   string `url:"estado,omitempty"`
	Search   string `url:"search,omitempty"`
	Page     int    `url:"page,omitempty"`
	PageSize int    `url:"page_size,omitempty"`
}

// ApplicationPage is one page of applications.
type ApplicationPage struct {
	Count   int                 `json:"count"`
	Results []model.Application `json:"results"`
}

// ListApplications returns the applications visible to the current user.
// The API answers either with a paginated envelope or with a bare array;
// both are accepted.
func (c *Client) ListApplications(ctx context.Context, filter ApplicationFilter) (*ApplicationPage, error) {
	values, err := query.Values(filter)
	if err != nil {
		return nil, fmt.Errorf("encoding application filter: %w", err)
	}

	path := "/solicitudes/"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var raw json.RawMessage
	if err := c.Get(ctx, path, &raw); err != nil {
		return nil, err
	}

	page := &ApplicationPage{}
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &page.Results); err != nil {
			return nil, fmt.Errorf("decoding applications: %w", err)
		}
		page.Count = len(page.Results)
		return page, nil
	}

	if err := json.Unmarshal(raw, page); err != nil {
		return nil, fmt.Errorf("decoding applications page: %w", err)
	}
	return page, nil
}
