package main

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/toothbrush/wp-migrate/wordpress"
	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

// siteFlags describe how to reach one WordPress site.  The application password never sits in
// config; it is read from the output of AuthTokenCmd.
type siteFlags struct {
	Name         string
	URL          string
	Username     string
	AuthTokenCmd []string
	Proxy        string
}

func (s *siteFlags) register(cmd *cobra.Command, name string) {
	s.Name = name
	flags := cmd.PersistentFlags()
	flags.StringVar(&s.URL, name+"-url", "", fmt.Sprintf("base URL of the %s site, e.g. https://example.com", name))
	flags.StringVar(&s.Username, name+"-username", "", fmt.Sprintf("WordPress username on the %s site", name))
	flags.StringSliceVar(&s.AuthTokenCmd, name+"-auth-token-cmd", []string{}, fmt.Sprintf("shell command printing an application password for the %s site", name))
	flags.StringVar(&s.Proxy, name+"-proxy", "", fmt.Sprintf("CORS proxy to reach the %s site through, e.g. http://localhost:8080", name))
}

// authToken runs AuthTokenCmd and keeps the first line of its output.
func (s *siteFlags) authToken(ctx context.Context) (string, error) {
	if len(s.AuthTokenCmd) < 1 {
		return "", fmt.Errorf("sites: please provide --%s-auth-token-cmd", s.Name)
	}

	out, err := exec.CommandContext(ctx, s.AuthTokenCmd[0], s.AuthTokenCmd[1:]...).Output()
	if err != nil {
		return "", fmt.Errorf("sites: couldn't execute %s-auth-token-cmd '%v': %w", s.Name, s.AuthTokenCmd, err)
	}

	token := strings.TrimSpace(strings.Split(string(out), "\n")[0])
	if token == "" {
		return "", fmt.Errorf("sites: %s-auth-token-cmd printed nothing", s.Name)
	}
	return token, nil
}

func (s *siteFlags) connection(ctx context.Context) (wordpress.Connection, error) {
	if s.URL == "" {
		return wordpress.Connection{}, fmt.Errorf("sites: please provide --%s-url", s.Name)
	}
	if s.Username == "" {
		return wordpress.Connection{}, fmt.Errorf("sites: please provide --%s-username", s.Name)
	}

	password, err := s.authToken(ctx)
	if err != nil {
		return wordpress.Connection{}, err
	}

	return wordpress.Connection{
		BaseURL:         s.URL,
		CredentialToken: wordpress.BasicToken(s.Username, password),
		ProxyURL:        s.Proxy,
		DisplayName:     s.Name,
	}, nil
}

// open builds the API client for the site.  The returned func must be called once the caller is
// done with the client; it flushes the go-vcr cassette when recording.
func (s *siteFlags) open(ctx context.Context) (*wordpress.API, func(), error) {
	conn, err := s.connection(ctx)
	if err != nil {
		return nil, nil, err
	}

	api, err := wordpress.NewAPI(conn)
	if err != nil {
		return nil, nil, fmt.Errorf("sites: couldn't instantiate %s API: %w", s.Name, err)
	}

	if !WithVCR {
		return api, func() {}, nil
	}

	r, err := newRecorder(path.Join("fixtures", s.Name))
	if err != nil {
		return nil, nil, err
	}
	api.Client = r.GetDefaultClient()

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("site", s.Name).Msg("recording HTTP interactions")

	return api, func() {
		if err := r.Stop(); err != nil {
			logger.Warn().Err(err).Str("site", s.Name).Msg("couldn't save go-vcr cassette")
		}
	}, nil
}

func newRecorder(cassetteName string) (*recorder.Recorder, error) {
	opts := &recorder.Options{
		CassetteName:       cassetteName,
		Mode:               recorder.ModeReplayWithNewEpisodes,
		SkipRequestLatency: true,
		RealTransport:      http.DefaultTransport,
	}
	r, err := recorder.NewWithOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("sites: couldn't set up go-vcr recording: %w", err)
	}

	// application passwords must not end up in fixtures
	hook := func(i *cassette.Interaction) error {
		delete(i.Request.Headers, "Authorization")
		return nil
	}
	r.AddHook(hook, recorder.AfterCaptureHook)
	r.SetReplayableInteractions(true)

	return r, nil
}
