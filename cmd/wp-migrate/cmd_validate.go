/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/toothbrush/wp-migrate/wordpress"
)

var validateUsage = strings.TrimSpace(`
Check that both sites answer on their REST API and accept your application passwords.  Pass
"source" or "destination" to only check one of them.
`)

var validateCmd = &cobra.Command{
	Use:       "validate [source|destination]",
	Short:     "Check the connection to each site",
	Long:      validateUsage,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"source", "destination"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sites := []*siteFlags{&Source, &Destination}
		if len(args) == 1 {
			sites = []*siteFlags{siteNamed(args[0])}
		}

		failed := 0
		for _, site := range sites {
			api, done, err := site.open(ctx)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			_, err = validateSite(ctx, os.Stdout, api)
			done()
			if err != nil {
				failed++
			}
		}

		if failed > 0 {
			return fmt.Errorf("validate: %d of %d sites failed validation", failed, len(sites))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func siteNamed(name string) *siteFlags {
	if name == Destination.Name {
		return &Destination
	}
	return &Source
}

// validateSite runs the connection check and reports on w.
func validateSite(ctx context.Context, w io.Writer, api *wordpress.API) (*wordpress.User, error) {
	user, err := api.Validate(ctx)
	if err != nil {
		fmt.Fprintf(w, "%s %s: %v\n", color.RedString("✗"), api, err)
		if hint := hintFor(err); hint != "" {
			fmt.Fprintf(w, "    %s\n", color.YellowString(hint))
		}
		return nil, err
	}

	fmt.Fprintf(w, "%s %s: logged in as '%s' (id %d)\n", color.GreenString("✓"), api, user.Name, user.ID)
	return user, nil
}

func hintFor(err error) string {
	switch wordpress.KindOf(err) {
	case wordpress.KindConnectivity:
		return "is the URL right?  Sites that refuse cross-origin requests need --<site>-proxy."
	case wordpress.KindAuthentication:
		return "create an application password under Users > Profile and check the username."
	case wordpress.KindHTTPStatus:
		return "the site answered, but not like a WordPress REST API.  Are permalinks enabled?"
	}
	return ""
}
