package wordpress

import (
	"fmt"
	"html"
	"net/url"
	"path"
	"strings"
)

type ContentType string

const (
	Posts ContentType = "posts"
	Pages ContentType = "pages"
)

func (c ContentType) Valid() bool {
	return c == Posts || c == Pages
}

func ParseContentType(s string) (ContentType, error) {
	c := ContentType(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("wordpress: unknown content type %q, want posts or pages", s)
	}
	return c, nil
}

// Status is the publication state of a post or page.
type Status string

const (
	StatusPublish Status = "publish"
	StatusFuture  Status = "future"
	StatusDraft   Status = "draft"
	StatusPending Status = "pending"
	StatusPrivate Status = "private"
)

// Rendered is WordPress' wrapper around HTML-ish fields.  Raw only shows up with context=edit.
type Rendered struct {
	Rendered string `json:"rendered"`
	Raw      string `json:"raw,omitempty"`
}

// Text prefers the raw value and otherwise unescapes the rendered one.
func (r Rendered) Text() string {
	if r.Raw != "" {
		return r.Raw
	}
	return html.UnescapeString(r.Rendered)
}

// See https://developer.wordpress.org/rest-api/reference/posts/#schema.  Pages share the schema,
// minus the taxonomy fields; posts have no parent.
//
// ID only means something on the site it came from.
type ContentItem struct {
	ID            int      `json:"id"`
	Date          string   `json:"date,omitempty"`
	Slug          string   `json:"slug,omitempty"`
	Link          string   `json:"link,omitempty"`
	Title         Rendered `json:"title"`
	Content       Rendered `json:"content"`
	Status        Status   `json:"status"`
	Author        int      `json:"author"`
	FeaturedMedia int      `json:"featured_media,omitempty"`
	Categories    []int    `json:"categories,omitempty"`
	Tags          []int    `json:"tags,omitempty"`
	Parent        int      `json:"parent,omitempty"`

	// Read-only snapshot, present when the item was requested with _embed.
	Embedded Embedded `json:"_embedded"`
}

// Embedded holds the objects inlined by _embed.  Keys follow the link relations WordPress uses.
type Embedded struct {
	Author        []User  `json:"author,omitempty"`
	FeaturedMedia []Media `json:"wp:featuredmedia,omitempty"`
	// One list per taxonomy, e.g. [[categories...], [tags...]]
	Terms [][]Term `json:"wp:term,omitempty"`
}

// AuthorName returns the embedded author's display name, if any.
func (e Embedded) AuthorName() string {
	if len(e.Author) == 0 {
		return ""
	}
	return e.Author[0].Name
}

// FeaturedAsset describes the embedded featured image.  The second result is false when there's
// nothing to move: no embed, or an embed we weren't allowed to see.
func (e Embedded) FeaturedAsset() (MediaAsset, bool) {
	if len(e.FeaturedMedia) == 0 || e.FeaturedMedia[0].SourceURL == "" {
		return MediaAsset{}, false
	}
	m := e.FeaturedMedia[0]
	return MediaAsset{
		SourceURL: m.SourceURL,
		Filename:  m.Filename(),
		MimeType:  m.MimeType,
	}, true
}

// AllTerms flattens the per-taxonomy lists.
func (e Embedded) AllTerms() []TaxonomyTerm {
	terms := []TaxonomyTerm{}
	for _, group := range e.Terms {
		for _, t := range group {
			terms = append(terms, t.TaxonomyTerm())
		}
	}
	return terms
}

// See https://developer.wordpress.org/rest-api/reference/users/#schema
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
	Link string `json:"link,omitempty"`
}

// See https://developer.wordpress.org/rest-api/reference/media/#schema
type Media struct {
	ID        int      `json:"id"`
	Slug      string   `json:"slug,omitempty"`
	Title     Rendered `json:"title"`
	MimeType  string   `json:"mime_type,omitempty"`
	SourceURL string   `json:"source_url,omitempty"`

	MediaDetails struct {
		File string `json:"file,omitempty"`
	} `json:"media_details"`
}

// Filename picks the name the asset should be uploaded under.
func (m Media) Filename() string {
	if u, err := url.Parse(m.SourceURL); err == nil {
		if name := path.Base(u.Path); name != "." && name != "/" && name != "" {
			return name
		}
	}
	if m.MediaDetails.File != "" {
		return path.Base(m.MediaDetails.File)
	}
	return fmt.Sprintf("media-%d", m.ID)
}

// MediaAsset is what we need to copy one file between sites.  There's no identity: every transfer
// uploads a fresh copy.
type MediaAsset struct {
	SourceURL string
	Filename  string
	MimeType  string
}

// See https://developer.wordpress.org/rest-api/reference/categories/#schema
type Term struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Taxonomy string `json:"taxonomy"`
}

func (t Term) TaxonomyTerm() TaxonomyTerm {
	return TaxonomyTerm{
		Name: html.UnescapeString(t.Name),
		Slug: t.Slug,
		Kind: TermKind(t.Taxonomy),
	}
}

type TermKind string

const (
	Category TermKind = "category"
	Tag      TermKind = "post_tag"
)

// Collection is the REST route serving this taxonomy.
func (k TermKind) Collection() (string, error) {
	switch k {
	case Category:
		return "categories", nil
	case Tag:
		return "tags", nil
	default:
		return "", fmt.Errorf("wordpress: unsupported taxonomy %q", string(k))
	}
}

// TaxonomyTerm is a term stripped of its site-local ID.  Slug and kind identify it across sites.
type TaxonomyTerm struct {
	Name string
	Slug string
	Kind TermKind
}
