package wordpress

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

const (
	restRoot  = "wp-json"
	restNS    = "wp-json/wp/v2"
	pageLimit = 100
)

// getRESTRootEndpoint returns the discovery document, which needs no auth:
// https://developer.wordpress.org/rest-api/using-the-rest-api/discovery/
func (api *API) getRESTRootEndpoint() (*url.URL, error) {
	return api.resolveEndpoint(restRoot + "/")
}

// getCurrentUserEndpoint returns the endpoint that describes whoever we authenticated as:
// https://developer.wordpress.org/rest-api/reference/users/#retrieve-a-user-2
func (api *API) getCurrentUserEndpoint() (*url.URL, error) {
	return api.resolveEndpoint(restNS + "/users/me")
}

// getContentListEndpoint returns the endpoint to list posts or pages:
// https://developer.wordpress.org/rest-api/reference/posts/#list-posts
func (api *API) getContentListEndpoint(contentType ContentType, opts ListContentQuery) (*url.URL, error) {
	if !contentType.Valid() {
		return nil, fmt.Errorf("wordpress: unsupported content type %q", contentType)
	}

	ep, err := api.resolveEndpoint(restNS + "/" + string(contentType))
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getContentByIDEndpoint returns the endpoint to retrieve one post or page:
// https://developer.wordpress.org/rest-api/reference/posts/#retrieve-a-post
func (api *API) getContentByIDEndpoint(contentType ContentType, opts GetContentQuery) (*url.URL, error) {
	if !contentType.Valid() {
		return nil, fmt.Errorf("wordpress: unsupported content type %q", contentType)
	}
	if opts.ID < 1 {
		return nil, fmt.Errorf("wordpress: please provide ID to get %s by ID", contentType)
	}

	ep, err := api.resolveEndpoint(fmt.Sprintf("%s/%s/%d", restNS, contentType, opts.ID))
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getCreateContentEndpoint returns the endpoint to create a post or page:
// https://developer.wordpress.org/rest-api/reference/posts/#create-a-post
func (api *API) getCreateContentEndpoint(contentType ContentType) (*url.URL, error) {
	if !contentType.Valid() {
		return nil, fmt.Errorf("wordpress: unsupported content type %q", contentType)
	}
	return api.resolveEndpoint(restNS + "/" + string(contentType))
}

// getMediaEndpoint returns the endpoint to upload media:
// https://developer.wordpress.org/rest-api/reference/media/#create-a-media-item
func (api *API) getMediaEndpoint() (*url.URL, error) {
	return api.resolveEndpoint(restNS + "/media")
}

// getTermsEndpoint returns the endpoint to list or create terms of one taxonomy:
// https://developer.wordpress.org/rest-api/reference/categories/
// https://developer.wordpress.org/rest-api/reference/tags/
func (api *API) getTermsEndpoint(kind TermKind, opts TermsQuery) (*url.URL, error) {
	collection, err := kind.Collection()
	if err != nil {
		return nil, err
	}

	ep, err := api.resolveEndpoint(restNS + "/" + collection)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// Resolve endpoint relative to the site root.  Sites living in a subdirectory keep their path.
func (api *API) resolveEndpoint(endpoint string) (*url.URL, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("wordpress: failed to parse endpoint ref: %w", err)
	}
	if ref.IsAbs() {
		return nil, fmt.Errorf("wordpress: endpoint must be relative: %s", endpoint)
	}

	ep := *api.BaseURI
	ep.Path = strings.TrimRight(ep.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	ep.RawPath = ""
	ep.RawQuery = ref.RawQuery

	return &ep, nil
}

// ResolveAssetURL turns a media reference into an absolute URL.  Absolute references pass
// through; anything else is taken relative to the site root.
func (api *API) ResolveAssetURL(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err == nil && u.IsAbs() && u.Host != "" {
		return u, nil
	}
	if err != nil || ref == "" {
		return nil, fmt.Errorf("wordpress: couldn't resolve asset path %q against %s", ref, api.BaseURI)
	}

	base := *api.BaseURI
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	return base.ResolveReference(u), nil
}

// ProxiedURL returns the URL that actually goes on the wire: the target itself, or the target
// appended to the proxy base with its trailing slashes trimmed.
func ProxiedURL(target string, proxyBase string) string {
	if proxyBase == "" {
		return target
	}
	return strings.TrimRight(proxyBase, "/") + "/" + target
}
