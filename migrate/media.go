package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/toothbrush/wp-migrate/wordpress"
)

// TransferMedia copies one asset from source to destination and returns the new destination media
// ID.  Nothing is deduplicated: two calls leave two copies on the destination.
func TransferMedia(ctx context.Context, asset wordpress.MediaAsset, source, destination *wordpress.API) (int, error) {
	logger := zerolog.Ctx(ctx)

	u, err := source.ResolveAssetURL(asset.SourceURL)
	if err != nil {
		return 0, fmt.Errorf("migrate: couldn't resolve image path %q against %s: %w", asset.SourceURL, source.BaseURI, err)
	}

	logger.Debug().Str("url", u.String()).Msg("downloading image")
	downloaded, err := source.Download(ctx, u)
	if err != nil {
		return 0, downloadError(source, u.String(), err)
	}

	mimeType := asset.MimeType
	if mimeType == "" {
		mimeType = downloaded.ContentType
	}

	logger.Debug().
		Str("filename", asset.Filename).
		Int("bytes", len(downloaded.Data)).
		Msg("uploading image")
	media, err := destination.UploadMedia(ctx, asset.Filename, mimeType, downloaded.Data)
	if err != nil {
		return 0, fmt.Errorf("migrate: couldn't upload image %s to %s: %w", asset.Filename, destination, err)
	}

	return media.ID, nil
}

func downloadError(source *wordpress.API, url string, err error) error {
	var connErr *wordpress.ConnectivityError
	if errors.As(err, &connErr) {
		if source.Proxied() {
			return fmt.Errorf("migrate: couldn't download image %s through proxy %s, check the proxy is correct: %w", url, source.ProxyURL, err)
		}
		return fmt.Errorf("migrate: couldn't download image %s, the source site probably blocks cross-origin requests, configure a proxy: %w", url, err)
	}

	var statusErr *wordpress.HTTPStatusError
	if errors.As(err, &statusErr) {
		return fmt.Errorf("migrate: source refused image %s (%d %s), check it exists and is publicly readable: %w",
			url, statusErr.StatusCode, statusErr.StatusText(), err)
	}

	return fmt.Errorf("migrate: couldn't download image %s: %w", url, err)
}
