package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/internal/kernel"
	"github.com/shashiranjanraj/cafe/internal/server"
	"github.com/shashiranjanraj/cafe/pkg/router"
)

// cafe serve [--port 9000]
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server, gRPC health and in-process workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			config.Set("APP_PORT", port)
		}
		return server.Start()
	},
}

// cafe route:list [--filter Order] [--json]
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		asJSON, _ := cmd.Flags().GetBool("json")

		var routes []router.Route
		for _, ri := range kernel.NewHTTPKernel().Router().Routes() {
			if filter == "" || strings.Contains(strings.ToLower(ri.Path+" "+ri.Name), strings.ToLower(filter)) {
				routes = append(routes, ri)
			}
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(routes)
		}
		if len(routes) == 0 {
			fmt.Fprintln(out, "No matching routes.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		for _, ri := range routes {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "listen port, overrides APP_PORT")
	routeListCmd.Flags().StringP("filter", "f", "", "only routes whose path or name contains this")
	routeListCmd.Flags().Bool("json", false, "print JSON instead of a table")
}

