package wordpress

import (
	"context"
	"fmt"
)

// CreateContentRequest is the body for creating a post or page.  There is no Parent field:
// page hierarchy isn't carried across sites.
type CreateContentRequest struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Status        Status `json:"status"`
	FeaturedMedia int    `json:"featured_media,omitempty"`
	Categories    []int  `json:"categories,omitempty"`
	Tags          []int  `json:"tags,omitempty"`
}

func (api *API) CreateContent(ctx context.Context, contentType ContentType, payload CreateContentRequest) (*ContentItem, error) {
	ep, err := api.getCreateContentEndpoint(contentType)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get create endpoint: %w", err)
	}

	resp, err := api.postJSON(ctx, ep, payload)
	if err != nil {
		return nil, err
	}

	return decode[ContentItem](resp)
}
