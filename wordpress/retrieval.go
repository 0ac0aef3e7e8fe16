package wordpress

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc is told how many items have been loaded so far, out of how many the site claims.
type ProgressFunc func(loaded, total int)

type contentPage struct {
	items      []ContentItem
	total      int
	totalPages int
}

// FetchAllContent retrieves every item of contentType, with embeds.  Page one goes first so we
// learn the page count; the remaining pages are all requested at once.  If any page fails the
// whole fetch fails: callers never see a partial list.
//
// Items come back grouped by page in page order, but callers should only rely on every item being
// present exactly once.
func (api *API) FetchAllContent(ctx context.Context, contentType ContentType, onProgress ProgressFunc) ([]ContentItem, error) {
	logger := zerolog.Ctx(ctx)
	report := func(loaded, total int) {
		if onProgress != nil {
			onProgress(loaded, total)
		}
	}

	first, err := api.listContentPage(ctx, contentType, 1)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't list %s on %s: %w", contentType, api, err)
	}
	logger.Debug().
		Str("site", api.String()).
		Str("type", string(contentType)).
		Int("total", first.total).
		Int("pages", first.totalPages).
		Msg("fetched first page")

	if first.totalPages <= 1 {
		report(len(first.items), first.total)
		return first.items, nil
	}

	report(len(first.items), first.total)

	rest := make([][]ContentItem, first.totalPages-1)
	grp, gctx := errgroup.WithContext(ctx)
	for page := 2; page <= first.totalPages; page++ {
		page := page
		grp.Go(func() error {
			result, err := api.listContentPage(gctx, contentType, page)
			if err != nil {
				return fmt.Errorf("wordpress: couldn't fetch page %d of %s: %w", page, contentType, err)
			}
			rest[page-2] = result.items
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't list %s on %s: %w", contentType, api, err)
	}

	items := first.items
	for _, pageItems := range rest {
		items = append(items, pageItems...)
	}

	report(len(items), first.total)
	logger.Debug().
		Str("site", api.String()).
		Str("type", string(contentType)).
		Int("items", len(items)).
		Msg("fetched all pages")

	return items, nil
}

func (api *API) listContentPage(ctx context.Context, contentType ContentType, page int) (*contentPage, error) {
	ep, err := api.getContentListEndpoint(contentType, ListContentQuery{
		Page:    page,
		PerPage: pageLimit,
		Embed:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get %s endpoint: %w", contentType, err)
	}

	resp, err := api.get(ctx, ep)
	if err != nil {
		return nil, err
	}

	items, err := decode[[]ContentItem](resp)
	if err != nil {
		return nil, err
	}

	result := &contentPage{
		items:      *items,
		total:      headerInt(resp, "X-WP-Total", len(*items)),
		totalPages: headerInt(resp, "X-WP-TotalPages", 1),
	}
	if result.items == nil {
		result.items = []ContentItem{}
	}

	return result, nil
}

// headerInt reads a pagination header, falling back to def when it's absent or garbled.
func headerInt(resp *response, key string, def int) int {
	v := resp.header.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// GetContent fetches a single post or page, with embeds.
func (api *API) GetContent(ctx context.Context, contentType ContentType, id int) (*ContentItem, error) {
	ep, err := api.getContentByIDEndpoint(contentType, GetContentQuery{ID: id, Embed: true})
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get single item endpoint: %w", err)
	}

	resp, err := api.get(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't fetch %s %d: %w", contentType, id, err)
	}

	return decode[ContentItem](resp)
}

// CurrentUser returns whoever the credential belongs to.
func (api *API) CurrentUser(ctx context.Context) (*User, error) {
	ep, err := api.getCurrentUserEndpoint()
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get current user endpoint: %w", err)
	}

	resp, err := api.get(ctx, ep)
	if err != nil {
		return nil, err
	}

	return decode[User](resp)
}
