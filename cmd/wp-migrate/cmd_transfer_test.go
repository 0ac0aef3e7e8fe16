package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toothbrush/wp-migrate/internal/wptest"
	"github.com/toothbrush/wp-migrate/migrate"
	"github.com/toothbrush/wp-migrate/wordpress"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"4", "12"})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 12}, ids)

	_, err = parseIDs([]string{"4", "hello"})
	assert.Error(t, err)
	_, err = parseIDs([]string{"0"})
	assert.Error(t, err)
}

func TestFilterByTitle(t *testing.T) {
	items := wptest.Posts(12)
	assert.Len(t, filterByTitle(items, ""), 12)
	assert.Equal(t, []int{1, 10, 11, 12}, itemIDs(filterByTitle(items, "post 1")))
	assert.Empty(t, filterByTitle(items, "nothing"))
}

func itemIDs(items []wordpress.ContentItem) []int {
	var ids []int
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestTransferJob(t *testing.T) {
	ctx := context.Background()

	newJob := func(t *testing.T) (transferJob, *wptest.Server, *wptest.Server) {
		src, dst := wptest.NewServer(), wptest.NewServer()
		t.Cleanup(src.Close)
		t.Cleanup(dst.Close)
		src.AddContent(wordpress.Posts, wptest.Posts(3)...)
		return transferJob{
			Source:      src.API("source"),
			Destination: dst.API("destination"),
			ContentType: wordpress.Posts,
		}, src, dst
	}

	t.Run("selected_ids", func(t *testing.T) {
		job, _, dst := newJob(t)
		job.IDs = []int{3, 1}
		dst.FailCreate("Post 1", wptest.Failure{Status: http.StatusInternalServerError, Message: "Could not insert post into the database."})

		var out bytes.Buffer
		batch, err := job.run(ctx, &out, io.Discard)
		require.NoError(t, err)

		assert.Equal(t, migrate.Summary{Total: 2, Succeeded: 1, Failed: 1}, batch.Summary())
		assert.Contains(t, out.String(), "logged in as 'admin'")
		assert.Contains(t, out.String(), "1 Post 1: content creation failed: Could not insert post into the database.")
		assert.Contains(t, out.String(), "1 transferred, 1 failed, 0 not attempted.")
		require.Len(t, dst.Created(wordpress.Posts), 1)
		assert.Equal(t, "Post 3", dst.Created(wordpress.Posts)[0].Title)
	})

	t.Run("all", func(t *testing.T) {
		job, _, dst := newJob(t)
		job.All = true

		batch, err := job.run(ctx, io.Discard, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, batch.Order())
		assert.Len(t, dst.Created(wordpress.Posts), 3)
	})

	t.Run("unknown_id", func(t *testing.T) {
		job, _, dst := newJob(t)
		job.IDs = []int{7}

		_, err := job.run(ctx, io.Discard, io.Discard)
		assert.Error(t, err)
		assert.Empty(t, dst.Created(wordpress.Posts))
	})

	t.Run("destination_rejects_credentials", func(t *testing.T) {
		job, _, dst := newJob(t)
		job.All = true
		conn := dst.Connection("destination")
		conn.CredentialToken = wordpress.BasicToken("admin", "wrong")
		api, err := wordpress.NewAPI(conn)
		require.NoError(t, err)
		job.Destination = api

		var out bytes.Buffer
		_, err = job.run(ctx, &out, io.Discard)
		assert.Equal(t, wordpress.KindAuthentication, wordpress.KindOf(err))
		assert.Contains(t, out.String(), "application password")
		assert.Zero(t, dst.Calls(http.MethodPost, "/wp-json/wp/v2/posts"))
	})
}

func TestWriteMarkdown(t *testing.T) {
	dir := t.TempDir()
	item := wptest.Post(4)
	item.Slug = "hello-world"

	written, err := writeMarkdown(dir, wordpress.Posts, item, "# Hello\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "posts", "hello-world.md"), written)

	raw, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, "# Hello\n", string(raw))

	item.Slug = ""
	written, err = writeMarkdown(dir, wordpress.Pages, item, "x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pages", "4.md"), written)

	_, err = writeMarkdown(filepath.Join(dir, "missing"), wordpress.Posts, item, "x")
	assert.Error(t, err)
}
