/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/fatih/structs"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

const defaultConfig = "~/.config/wp-migrate.yaml"

var (
	// Store the result of binding cobra flags
	Config  string
	Debug   bool
	WithVCR bool

	Source      siteFlags
	Destination siteFlags

	ParsedConfig YamlConfig
)

// Build the cobra command that handles our command line tool.
var rootCmd = &cobra.Command{
	Use:   "wp-migrate",
	Short: "Copy posts and pages between WordPress sites",
	Long: `
Moving a handful of posts from one WordPress site to another shouldn't mean exporting XML and
fighting the importer plugin.  This tool talks to both sites' REST APIs directly: it lists what the
source has, and recreates the items you pick on the destination, featured images, categories and
tags included.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(cmd); err != nil {
			return fmt.Errorf("wp-migrate: failed to initialise config: %w", err)
		}

		logger := newLogger(Debug)
		cmd.SetContext(logger.WithContext(cmd.Context()))
		logger.Debug().Str("config", Config).Msg("config loaded")
		return nil
	},
}

func init() {
	// Define cobra flags, the default value has the lowest (least significant) precedence
	rootCmd.PersistentFlags().StringVar(&Config, "config", "", "config file location (default: "+defaultConfig+", respects WP_MIGRATE_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "display debug output")
	rootCmd.PersistentFlags().BoolVar(&WithVCR, "with-vcr", false, "record and replay HTTP traffic with go-vcr (fixtures/<site>.yaml)")

	Source.register(rootCmd, "source")
	Destination.register(rootCmd, "destination")
}

func initializeConfig(cmd *cobra.Command) error {
	explicit := Config != ""
	if !explicit {
		// Did the user provide an ENV?
		if envConfig := os.Getenv("WP_MIGRATE_CONFIG"); envConfig != "" {
			Config = envConfig
			explicit = true
		} else {
			// As fallback, search for config in home XDG-ish directory
			Config = defaultConfig
		}
	}
	config, err := homedir.Expand(Config)
	if err != nil {
		return fmt.Errorf("wp-migrate: unable to expand homedir: %w", err)
	}
	Config = config

	if _, err := os.Stat(Config); errors.Is(err, os.ErrNotExist) {
		if !explicit {
			// everything can come from flags
			return nil
		}
		fmt.Printf("Couldn't read config file %s, does it exist?  Override with --config.\n", Config)
		return fmt.Errorf("wp-migrate: specified config file does not exist: %w", err)
	}

	yamlFile, err := os.ReadFile(Config)
	if err != nil {
		return fmt.Errorf("wp-migrate: error reading config file: %w", err)
	}

	// I'd like to bark if a user sets a key we don't recognise:
	if err := yaml.UnmarshalStrict(yamlFile, &ParsedConfig); err != nil {
		return fmt.Errorf("wp-migrate: issue parsing config file: %w", err)
	}

	if err := bindFlags(cmd, ParsedConfig); err != nil {
		return fmt.Errorf("wp-migrate: failed to bind flags: %w", err)
	}

	return nil
}

type YamlConfig struct {
	SkipImages *bool `yaml:"skip-images"`
	WithVCR    *bool `yaml:"with-vcr"`

	ContentType string `yaml:"content-type"`

	SourceURL          string   `yaml:"source-url"`
	SourceUsername     string   `yaml:"source-username"`
	SourceAuthTokenCmd []string `yaml:"source-auth-token-cmd"`
	SourceProxy        string   `yaml:"source-proxy"`

	DestinationURL          string   `yaml:"destination-url"`
	DestinationUsername     string   `yaml:"destination-username"`
	DestinationAuthTokenCmd []string `yaml:"destination-auth-token-cmd"`
	DestinationProxy        string   `yaml:"destination-proxy"`
}

// bindFlags copies config values onto the command's flags, unless the flag was given on the
// command line.
func bindFlags(cmd *cobra.Command, v YamlConfig) error {
	for _, field := range structs.Fields(v) {
		key := field.Tag("yaml")
		if key == "" {
			return fmt.Errorf("wp-migrate: could not retrieve struct tag 'yaml'")
		}
		if flag := cmd.Flag(key); flag == nil {
			// e.g. `list` has no `skip-images` flag, but the config file may well set it.
			continue
		}
		if cmd.Flags().Changed(key) {
			continue
		}

		switch field.Kind() {
		case reflect.Ptr:
			// YamlConfig only uses pointers for bools
			b, ok := field.Value().(*bool)
			if !ok {
				return fmt.Errorf("wp-migrate: found unrecognised field: %+v", field)
			}
			if b != nil {
				if err := cmd.Flags().Set(key, fmt.Sprintf("%v", *b)); err != nil {
					return fmt.Errorf("wp-migrate: couldn't set %s: %w", key, err)
				}
			}

		case reflect.String:
			s, ok := field.Value().(string)
			if !ok {
				return fmt.Errorf("wp-migrate: found unrecognised field: %+v", field)
			}
			if s != "" {
				if err := cmd.Flags().Set(key, s); err != nil {
					return fmt.Errorf("wp-migrate: couldn't set %s: %w", key, err)
				}
			}

		case reflect.Slice:
			ss, ok := field.Value().([]string)
			if !ok {
				return fmt.Errorf("wp-migrate: found unrecognised field: %+v", field)
			}
			for _, s := range ss {
				// repeatedly calling Set() appends to the slice
				if err := cmd.Flags().Set(key, s); err != nil {
					return fmt.Errorf("wp-migrate: couldn't set %s: %w", key, err)
				}
			}

		default:
			return fmt.Errorf("wp-migrate: found unrecognised field: %+v", field)
		}
	}

	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("wp-migrate: execution error: %w", err)
	}

	return nil
}
