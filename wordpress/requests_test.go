package wordpress_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toothbrush/wp-migrate/internal/wptest"
	"github.com/toothbrush/wp-migrate/wordpress"
)

func TestRequestErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("server_message", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()
		srv.FailPage(1, wptest.Failure{Status: http.StatusForbidden, Message: "Sorry, you are not allowed to do that."})

		_, err := srv.API("src").FetchAllContent(ctx, wordpress.Posts, nil)
		require.Error(t, err)

		var statusErr *wordpress.HTTPStatusError
		require.True(t, errors.As(err, &statusErr), "should be an HTTP status error")
		assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
		assert.Equal(t, "Sorry, you are not allowed to do that.", statusErr.Message)
		assert.Equal(t, "Forbidden", statusErr.StatusText())
		assert.Equal(t, wordpress.KindHTTPStatus, wordpress.KindOf(err))
	})

	t.Run("fallback_message", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()
		srv.FailPage(1, wptest.Failure{Status: http.StatusBadGateway})

		_, err := srv.API("src").FetchAllContent(ctx, wordpress.Posts, nil)
		require.Error(t, err)

		var statusErr *wordpress.HTTPStatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, "HTTP error! status: 502", statusErr.Message)
	})

	t.Run("no_response", func(t *testing.T) {
		srv := wptest.NewServer()
		api := srv.API("src")
		srv.Close()

		_, err := api.FetchAllContent(ctx, wordpress.Posts, nil)
		require.Error(t, err)

		var connErr *wordpress.ConnectivityError
		require.True(t, errors.As(err, &connErr), "should be a connectivity error, got %v", err)
		assert.False(t, connErr.Proxied)
		assert.Contains(t, connErr.Error(), "configuring a proxy")
		assert.Equal(t, wordpress.KindConnectivity, wordpress.KindOf(err))
	})

	t.Run("no_response_via_proxy", func(t *testing.T) {
		srv := wptest.NewServer()
		defer srv.Close()
		conn := srv.Connection("src")
		conn.ProxyURL = "http://127.0.0.1:1/"
		api, err := wordpress.NewAPI(conn)
		require.NoError(t, err)

		_, err = api.FetchAllContent(ctx, wordpress.Posts, nil)
		require.Error(t, err)

		var connErr *wordpress.ConnectivityError
		require.True(t, errors.As(err, &connErr))
		assert.True(t, connErr.Proxied)
		assert.Contains(t, connErr.Error(), "proxy URL is correct")
	})
}

func TestRequestsGoThroughProxy(t *testing.T) {
	srv := wptest.NewServer()
	defer srv.Close()
	srv.AddContent(wordpress.Posts, wptest.Posts(3)...)

	proxy := wptest.NewProxy()
	defer proxy.Close()

	conn := srv.Connection("src")
	conn.ProxyURL = proxy.URL + "/"
	api, err := wordpress.NewAPI(conn)
	require.NoError(t, err)

	items, err := api.FetchAllContent(context.Background(), wordpress.Posts, nil)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	targets := proxy.Targets()
	require.Len(t, targets, 1, "one page means one request")
	assert.Contains(t, targets[0], srv.URL+"/wp-json/wp/v2/posts?")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, wordpress.KindUnknown, wordpress.KindOf(nil))
	assert.Equal(t, wordpress.KindUnknown, wordpress.KindOf(errors.New("plain")))
	assert.Equal(t, wordpress.KindAuthentication, wordpress.KindOf(&wordpress.ConnectionError{
		Step: wordpress.StepAuthentication,
		Err:  &wordpress.AuthenticationError{StatusCode: 401},
	}))
}
