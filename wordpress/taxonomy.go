package wordpress

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ResolveTerm returns the ID of the term on this site with the same slug and kind, creating it
// when there isn't one.  The lookup always happens; when several terms share the slug the first
// one listed wins.
//
// Lookup and create aren't atomic.  Two processes resolving the same new slug at once can both
// create it.
func (api *API) ResolveTerm(ctx context.Context, term TaxonomyTerm) (int, error) {
	if term.Slug == "" {
		return 0, fmt.Errorf("wordpress: term %q has no slug", term.Name)
	}

	ep, err := api.getTermsEndpoint(term.Kind, TermsQuery{Slug: term.Slug})
	if err != nil {
		return 0, fmt.Errorf("wordpress: couldn't get terms endpoint: %w", err)
	}

	resp, err := api.get(ctx, ep)
	if err != nil {
		return 0, fmt.Errorf("wordpress: couldn't look up %s %q: %w", term.Kind, term.Slug, err)
	}

	matches, err := decode[[]Term](resp)
	if err != nil {
		return 0, err
	}
	if len(*matches) > 0 {
		zerolog.Ctx(ctx).Debug().
			Str("slug", term.Slug).
			Int("id", (*matches)[0].ID).
			Msg("term exists")
		return (*matches)[0].ID, nil
	}

	created, err := api.createTerm(ctx, term)
	if err != nil {
		return 0, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("slug", term.Slug).
		Int("id", created.ID).
		Msg("term created")

	return created.ID, nil
}

func (api *API) createTerm(ctx context.Context, term TaxonomyTerm) (*Term, error) {
	ep, err := api.getTermsEndpoint(term.Kind, TermsQuery{})
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get terms endpoint: %w", err)
	}

	resp, err := api.postJSON(ctx, ep, struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}{
		Name: term.Name,
		Slug: term.Slug,
	})
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't create %s %q: %w", term.Kind, term.Slug, err)
	}

	return decode[Term](resp)
}
