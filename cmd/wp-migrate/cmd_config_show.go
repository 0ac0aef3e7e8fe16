/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Output current config",
	Long: `
Is something not working for you?  Have a look whether your config is as you expect.  Application
passwords are never shown, only the commands that produce them.
`,
	Args: cobra.ExactArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		showConfig(os.Stdout)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

// showConfig only covers persistent flags; command-specific ones aren't bound here.
func showConfig(w io.Writer) {
	fmt.Fprintf(w, "Dump current config state:\n\n")

	fmt.Fprintf(w, "  Config file: %s\n", Config)
	fmt.Fprintf(w, "  Debug: %v\n", Debug)
	fmt.Fprintf(w, "  WithVCR: %v\n", WithVCR)
	fmt.Fprintln(w)
	for _, site := range []siteFlags{Source, Destination} {
		fmt.Fprintf(w, "  %s:\n", site.Name)
		fmt.Fprintf(w, "    URL: %s\n", site.URL)
		fmt.Fprintf(w, "    Username: %s\n", site.Username)
		fmt.Fprintf(w, "    AuthTokenCmd: %v\n", site.AuthTokenCmd)
		fmt.Fprintf(w, "    Proxy: %s\n", site.Proxy)
	}
}
