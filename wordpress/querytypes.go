package wordpress

// ListContentQuery defines the query parameters for:
// https://developer.wordpress.org/rest-api/reference/posts/#arguments
//
// Pages take the same shape.
type ListContentQuery struct {
	Page    int    `url:"page,omitempty"`     // 1-based page number
	PerPage int    `url:"per_page,omitempty"` // page size; default 10, range 1-100
	Search  string `url:"search,omitempty"`   // limit results to those matching a string

	// _embed inlines author, featured media and terms into each item.
	Embed bool `url:"_embed,omitempty,int"`
}

// GetContentQuery defines the query parameters for:
// https://developer.wordpress.org/rest-api/reference/posts/#retrieve-a-post
type GetContentQuery struct {
	ID    int  `url:"-"` // ID of the post or page; required
	Embed bool `url:"_embed,omitempty,int"`
}

// TermsQuery defines the query parameters for:
// https://developer.wordpress.org/rest-api/reference/categories/#list-categories
type TermsQuery struct {
	Slug    string `url:"slug,omitempty"`
	PerPage int    `url:"per_page,omitempty"`
}
