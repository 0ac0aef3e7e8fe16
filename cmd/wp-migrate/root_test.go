package main

import (
	"context"
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toothbrush/wp-migrate/internal/wptest"
	"github.com/toothbrush/wp-migrate/wordpress"
	"gopkg.in/yaml.v2"
)

func TestBindFlags(t *testing.T) {
	var site siteFlags
	var skipImages bool
	cmd := &cobra.Command{Use: "test"}
	site.register(cmd, "source")
	cmd.Flags().BoolVar(&skipImages, "skip-images", false, "")
	require.NoError(t, cmd.ParseFlags([]string{"--source-username", "cli-user"}))

	yes := true
	config := YamlConfig{
		SkipImages:         &yes,
		SourceURL:          "https://old.example.com",
		SourceUsername:     "config-user",
		SourceAuthTokenCmd: []string{"pass", "show", "wp/old"},
		DestinationURL:     "https://new.example.com",
	}
	require.NoError(t, bindFlags(cmd, config))

	assert.True(t, skipImages)
	assert.Equal(t, "https://old.example.com", site.URL)
	assert.Equal(t, "cli-user", site.Username, "command line wins over config")
	assert.Equal(t, []string{"pass", "show", "wp/old"}, site.AuthTokenCmd)
}

func TestConfigIsStrict(t *testing.T) {
	var config YamlConfig
	err := yaml.UnmarshalStrict([]byte("source-url: https://old.example.com\nsorce-proxy: nope\n"), &config)
	assert.Error(t, err, "typos in keys must not pass silently")
}

func TestInitializeConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wp-migrate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("destination-url: https://new.example.com\n"), 0600))

	t.Setenv("WP_MIGRATE_CONFIG", path)
	t.Cleanup(func() {
		Config = ""
		Destination.URL = ""
		ParsedConfig = YamlConfig{}
	})

	// merges the persistent flags, as Execute would
	require.NoError(t, rootCmd.ParseFlags(nil))

	Config = ""
	require.NoError(t, initializeConfig(rootCmd))
	assert.Equal(t, path, Config)
	assert.Equal(t, "https://new.example.com", Destination.URL)

	Config = filepath.Join(dir, "missing.yaml")
	assert.Error(t, initializeConfig(rootCmd), "an explicit config file has to exist")
}

func TestSiteConnection(t *testing.T) {
	ctx := context.Background()
	srv := wptest.NewServer()
	t.Cleanup(srv.Close)

	site := siteFlags{
		Name:         "source",
		URL:          srv.URL,
		Username:     srv.Username,
		AuthTokenCmd: []string{"echo", srv.Password},
	}

	conn, err := site.connection(ctx)
	require.NoError(t, err)
	assert.Equal(t, wordpress.BasicToken(srv.Username, srv.Password), conn.CredentialToken)

	api, err := wordpress.NewAPI(conn)
	require.NoError(t, err)
	user, err := api.Validate(ctx)
	require.NoError(t, err)
	assert.Equal(t, srv.Username, user.Name)

	site.AuthTokenCmd = nil
	_, err = site.connection(ctx)
	assert.ErrorContains(t, err, "--source-auth-token-cmd")

	site.AuthTokenCmd = []string{"true"}
	_, err = site.connection(ctx)
	assert.ErrorContains(t, err, "printed nothing")

	site.URL = ""
	_, err = site.connection(ctx)
	assert.ErrorContains(t, err, "--source-url")
}

func TestShortVersion(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	assert.Equal(t, "rev-0123456789ab-dirty", shortVersion("unknown", info))
	assert.Equal(t, "v1.2.0-rev-0123456789ab-dirty", shortVersion("v1.2.0", info))
	assert.Equal(t, "v0.3.1", shortVersion("unknown", &debug.BuildInfo{Main: debug.Module{Version: "v0.3.1"}}))
	assert.Equal(t, "devel", shortVersion("unknown", &debug.BuildInfo{}))
}
