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

type progressCall struct {
	loaded, total int
}

func recordProgress(calls *[]progressCall) wordpress.ProgressFunc {
	return func(loaded, total int) {
		*calls = append(*calls, progressCall{loaded, total})
	}
}

func ids(items []wordpress.ContentItem) []int {
	out := make([]int, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestFetchAllContent(t *testing.T) {
	ctx := context.Background()

	t.Run("single_page_keeps_order", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()
		srv.AddContent(wordpress.Posts, wptest.Post(7), wptest.Post(3), wptest.Post(5))

		var progress []progressCall
		items, err := srv.API("src").FetchAllContent(ctx, wordpress.Posts, recordProgress(&progress))
		require.NoError(t, err)
		assert.Equal(t, []int{7, 3, 5}, ids(items))
		assert.Equal(t, []progressCall{{3, 3}}, progress)
		assert.Equal(t, 1, srv.Calls(http.MethodGet, "/wp-json/wp/v2/posts"))
	})

	t.Run("many_pages", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()
		srv.AddContent(wordpress.Posts, wptest.Posts(250)...)

		var progress []progressCall
		items, err := srv.API("src").FetchAllContent(ctx, wordpress.Posts, recordProgress(&progress))
		require.NoError(t, err)

		want := make([]int, 0, 250)
		for i := 1; i <= 250; i++ {
			want = append(want, i)
		}
		assert.ElementsMatch(t, want, ids(items), "every item exactly once")
		assert.Equal(t, []progressCall{{100, 250}, {250, 250}}, progress)
		assert.Equal(t, 3, srv.Calls(http.MethodGet, "/wp-json/wp/v2/posts"))
	})

	t.Run("failed_page_fails_everything", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()
		srv.AddContent(wordpress.Posts, wptest.Posts(250)...)
		srv.FailPage(2, wptest.Failure{Status: http.StatusInternalServerError, Message: "database went away"})

		items, err := srv.API("src").FetchAllContent(ctx, wordpress.Posts, nil)
		require.Error(t, err)
		assert.Nil(t, items, "no partial result")
		assert.Contains(t, err.Error(), "database went away")
	})

	t.Run("failed_first_page", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()
		srv.AddContent(wordpress.Pages, wptest.Posts(5)...)
		srv.FailPage(1, wptest.Failure{Status: http.StatusServiceUnavailable})

		var progress []progressCall
		items, err := srv.API("src").FetchAllContent(ctx, wordpress.Pages, recordProgress(&progress))
		require.Error(t, err)
		assert.Nil(t, items)
		assert.Empty(t, progress)
	})

	t.Run("empty", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()

		var progress []progressCall
		items, err := srv.API("src").FetchAllContent(ctx, wordpress.Pages, recordProgress(&progress))
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
		assert.Equal(t, []progressCall{{0, 0}}, progress)
	})

	t.Run("missing_page_count_means_one_page", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()
		srv.AddContent(wordpress.Posts, wptest.Posts(150)...)
		srv.OmitPageCount()

		items, err := srv.API("src").FetchAllContent(ctx, wordpress.Posts, nil)
		require.NoError(t, err)
		assert.Len(t, items, 100)
		assert.Equal(t, 1, srv.Calls(http.MethodGet, "/wp-json/wp/v2/posts"))
	})

	t.Run("unknown_type", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()

		_, err := srv.API("src").FetchAllContent(ctx, wordpress.ContentType("media"), nil)
		require.Error(t, err)
		assert.Zero(t, srv.Calls(http.MethodGet, "/wp-json/wp/v2/media"))
	})
}

func TestGetContent(t *testing.T) {
	srv := wptest.NewServer()
	defer srv.Close()

	_, err := srv.API("src").GetContent(context.Background(), wordpress.Posts, 0)
	assert.Error(t, err, "ID is required")
}
