package wordpress_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toothbrush/wp-migrate/internal/wptest"
	"github.com/toothbrush/wp-migrate/wordpress"
)

func TestResolveTerm(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_once", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()
		api := srv.API("dst")

		term := wordpress.TaxonomyTerm{Name: "Go", Slug: "go", Kind: wordpress.Tag}
		first, err := api.ResolveTerm(ctx, term)
		require.NoError(t, err)
		second, err := api.ResolveTerm(ctx, term)
		require.NoError(t, err)

		assert.Equal(t, first, second, "same slug converges on the same term")
		assert.Len(t, srv.Terms(wordpress.Tag), 1)
		assert.Equal(t, 2, srv.Calls(http.MethodGet, "/wp-json/wp/v2/tags"), "lookup happens every time")
		assert.Equal(t, 1, srv.Calls(http.MethodPost, "/wp-json/wp/v2/tags"))
	})

	t.Run("existing_term", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()
		srv.AddTerm(wordpress.Category, "Other", "other")
		want := srv.AddTerm(wordpress.Category, "News", "news")

		got, err := srv.API("dst").ResolveTerm(ctx, wordpress.TaxonomyTerm{Name: "Nieuws", Slug: "news", Kind: wordpress.Category})
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Zero(t, srv.Calls(http.MethodPost, "/wp-json/wp/v2/categories"))
	})

	t.Run("kinds_are_separate", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()
		srv.AddTerm(wordpress.Category, "News", "news")

		_, err := srv.API("dst").ResolveTerm(ctx, wordpress.TaxonomyTerm{Name: "News", Slug: "news", Kind: wordpress.Tag})
		require.NoError(t, err)
		assert.Len(t, srv.Terms(wordpress.Tag), 1)
	})

	t.Run("lookup_fails", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()
		srv.FailTerms(wptest.Failure{Status: http.StatusForbidden, Message: "Sorry, you are not allowed to create terms in this taxonomy."})

		_, err := srv.API("dst").ResolveTerm(ctx, wordpress.TaxonomyTerm{Name: "Go", Slug: "go", Kind: wordpress.Tag})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not allowed to create terms")
	})

	t.Run("bad_input", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()

		_, err := srv.API("dst").ResolveTerm(ctx, wordpress.TaxonomyTerm{Name: "Go", Kind: wordpress.Tag})
		assert.Error(t, err, "slug is required")

		_, err = srv.API("dst").ResolveTerm(ctx, wordpress.TaxonomyTerm{Name: "Go", Slug: "go", Kind: "genre"})
		assert.Error(t, err, "custom taxonomies aren't supported")
	})
}
