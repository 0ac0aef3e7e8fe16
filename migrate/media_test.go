package migrate_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toothbrush/wp-migrate/internal/wptest"
	"github.com/toothbrush/wp-migrate/migrate"
	"github.com/toothbrush/wp-migrate/wordpress"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nnot really a png")

func TestTransferMedia(t *testing.T) {
	ctx := context.Background()

	t.Run("relative_url", func(t *testing.T) {
		src, dst := wptest.NewServer(), wptest.NewServer()
		defer src.Close()
		defer dst.Close()
		src.AddAsset("/wp-content/uploads/2024/01/cat.png", pngBytes)

		asset := wordpress.MediaAsset{
			SourceURL: "/wp-content/uploads/2024/01/cat.png",
			Filename:  "cat.png",
			MimeType:  "image/png",
		}
		id, err := migrate.TransferMedia(ctx, asset, src.API("src"), dst.API("dst"))
		require.NoError(t, err)

		uploads := dst.Uploads()
		require.Len(t, uploads, 1)
		assert.Equal(t, uploads[0].ID, id)
		assert.Equal(t, "cat.png", uploads[0].Filename)
		assert.Equal(t, "image/png", uploads[0].ContentType)
		assert.Equal(t, pngBytes, uploads[0].Data)
	})

	t.Run("no_dedup", func(t *testing.T) {
		src, dst := wptest.NewServer(), wptest.NewServer()
		defer src.Close()
		defer dst.Close()
		src.AddAsset("/wp-content/uploads/cat.png", pngBytes)

		asset := wordpress.MediaAsset{SourceURL: src.URL + "/wp-content/uploads/cat.png", Filename: "cat.png"}
		first, err := migrate.TransferMedia(ctx, asset, src.API("src"), dst.API("dst"))
		require.NoError(t, err)
		second, err := migrate.TransferMedia(ctx, asset, src.API("src"), dst.API("dst"))
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.Len(t, dst.Uploads(), 2)
	})

	t.Run("missing_on_source", func(t *testing.T) {
		src, dst := wptest.NewServer(), wptest.NewServer()
		defer src.Close()
		defer dst.Close()

		asset := wordpress.MediaAsset{SourceURL: "/wp-content/uploads/gone.png", Filename: "gone.png"}
		_, err := migrate.TransferMedia(ctx, asset, src.API("src"), dst.API("dst"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404 Not Found")
		assert.Zero(t, dst.Calls(http.MethodPost, "/wp-json/wp/v2/media"), "nothing to upload")
	})

	t.Run("source_unreachable", func(t *testing.T) {
		src, dst := wptest.NewServer(), wptest.NewServer()
		defer dst.Close()
		srcAPI := src.API("src")
		src.Close()

		asset := wordpress.MediaAsset{SourceURL: "/wp-content/uploads/cat.png", Filename: "cat.png"}
		_, err := migrate.TransferMedia(ctx, asset, srcAPI, dst.API("dst"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configure a proxy")

		var connErr *wordpress.ConnectivityError
		assert.True(t, errors.As(err, &connErr))
	})

	t.Run("proxy_unreachable", func(t *testing.T) {
		src, dst := wptest.NewServer(), wptest.NewServer()
		defer src.Close()
		defer dst.Close()
		conn := src.Connection("src")
		conn.ProxyURL = "http://127.0.0.1:1"
		srcAPI, err := wordpress.NewAPI(conn)
		require.NoError(t, err)

		asset := wordpress.MediaAsset{SourceURL: "/wp-content/uploads/cat.png", Filename: "cat.png"}
		_, err = migrate.TransferMedia(ctx, asset, srcAPI, dst.API("dst"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "check the proxy is correct")
	})

	t.Run("upload_rejected", func(t *testing.T) {
		src, dst := wptest.NewServer(), wptest.NewServer()
		defer src.Close()
		defer dst.Close()
		src.AddAsset("/wp-content/uploads/cat.png", pngBytes)

		conn := dst.Connection("dst")
		conn.CredentialToken = wordpress.BasicToken(dst.Username, "nope")
		dstAPI, err := wordpress.NewAPI(conn)
		require.NoError(t, err)

		asset := wordpress.MediaAsset{SourceURL: "/wp-content/uploads/cat.png", Filename: "cat.png"}
		_, err = migrate.TransferMedia(ctx, asset, src.API("src"), dstAPI)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not allowed to upload media")
	})
}
