package wordpress

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

// Asset is a downloaded file, held in memory until it's uploaded elsewhere.
type Asset struct {
	Data        []byte
	ContentType string
}

// Download fetches a file through this site's proxy.  No credentials are sent: asset URLs often
// point at a CDN rather than the site itself.
func (api *API) Download(ctx context.Context, u *url.URL) (*Asset, error) {
	resp, err := api.request(ctx, u, requestOptions{
		method:    http.MethodGet,
		anonymous: true,
		header:    http.Header{"Accept": []string{"*/*"}},
	})
	if err != nil {
		return nil, err
	}

	return &Asset{
		Data:        resp.body,
		ContentType: resp.header.Get("Content-Type"),
	}, nil
}

// UploadMedia creates a new media item from data, sent as the multipart field "file".
func (api *API) UploadMedia(ctx context.Context, filename string, mimeType string, data []byte) (*Media, error) {
	ep, err := api.getMediaEndpoint()
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get media endpoint: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h.Set("Content-Type", mimeType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't create multipart section: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't write multipart section: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("wordpress: couldn't finish multipart body: %w", err)
	}

	resp, err := api.request(ctx, ep, requestOptions{
		method:      http.MethodPost,
		body:        &body,
		contentType: w.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}

	return decode[Media](resp)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
