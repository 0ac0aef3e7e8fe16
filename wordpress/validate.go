package wordpress

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Validate proves the connection works: the REST API answers at all, then the credential
// authenticates as a real user.  It stops at the first failure, which is always a
// *ConnectionError.
func (api *API) Validate(ctx context.Context) (*User, error) {
	logger := zerolog.Ctx(ctx)

	ep, err := api.getRESTRootEndpoint()
	if err != nil {
		return nil, fmt.Errorf("wordpress: couldn't get REST root endpoint: %w", err)
	}

	logger.Debug().Str("site", api.String()).Str("url", ep.String()).Msg("checking REST API")
	if _, err := api.request(ctx, ep, requestOptions{method: http.MethodGet, anonymous: true}); err != nil {
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			return nil, &ConnectionError{
				Step:   StepRESTRoot,
				Reason: fmt.Sprintf("API unreachable at %s (HTTP %d)", ep, statusErr.StatusCode),
				Err:    err,
			}
		}
		return nil, &ConnectionError{
			Step:   StepRESTRoot,
			Reason: "couldn't reach the site, check the URL, CORS settings or proxy",
			Err:    err,
		}
	}

	logger.Debug().Str("site", api.String()).Msg("checking credentials")
	user, err := api.CurrentUser(ctx)
	if err != nil {
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			if statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden {
				return nil, &ConnectionError{
					Step:   StepAuthentication,
					Reason: "credentials rejected",
					Err: &AuthenticationError{
						StatusCode: statusErr.StatusCode,
						Message:    statusErr.Message,
					},
				}
			}
			return nil, &ConnectionError{
				Step:   StepAuthentication,
				Reason: fmt.Sprintf("authentication check failed (HTTP %d)", statusErr.StatusCode),
				Err:    err,
			}
		}
		return nil, &ConnectionError{
			Step:   StepAuthentication,
			Reason: "couldn't reach the site, check CORS settings or proxy",
			Err:    err,
		}
	}

	if user.ID < 1 {
		return nil, &ConnectionError{
			Step:   StepAuthentication,
			Reason: "credentials rejected",
			Err: &AuthenticationError{
				StatusCode: http.StatusOK,
				Message:    "site did not identify a logged-in user",
			},
		}
	}

	return user, nil
}
