package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/spf13/cobra"
)

func newRequestCmd(opts *globalOptions) *cobra.Command {
	var (
		data    string
		headers []string
		project string
		silent  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "request [METHOD] PATH",
		Short: "Send one request through the orchestrator",
		Long: `Sends a request with the configured retry policy and prints the response body.
The selected project (see "conduit use") is sent as the X-Project-Id header.`,
		Example: `  conduit request /api/projects
  conduit request POST /api/items/risks --data '{"title":"Supplier delay"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, path := "", args[0]
			if len(args) == 2 {
				method, path = args[0], args[1]
			}
			m, err := domain.ParseMethod(method)
			if err != nil {
				return err
			}

			spec := domain.RequestSpec{
				Path:    path,
				Method:  m,
				Headers: map[string]string{},
				Timeout: timeout,
				Silent:  silent,
			}
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data is not valid JSON")
				}
				spec.Body = []byte(data)
			}
			for _, h := range headers {
				name, value, ok := strings.Cut(h, ":")
				if !ok {
					return fmt.Errorf("header %q must be Name: value", h)
				}
				spec.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
			}
			if project != "" {
				spec.Headers[domain.HeaderProjectID] = project
			}

			ctx := cmd.Context()
			client, closeFn, err := opts.openClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			client.Session().Restore(ctx)
			resp, err := client.Request().Send(ctx, spec)
			if err != nil {
				return err
			}
			return printBody(cmd.OutOrStdout(), resp.Data)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&data, "data", "d", "", "JSON request body")
	f.StringArrayVarP(&headers, "header", "H", nil, "Extra header as 'Name: value' (repeatable)")
	f.StringVarP(&project, "project", "p", "", "Project ID for this request only")
	f.BoolVar(&silent, "silent", false, "Do not print the failure notification")
	f.DurationVar(&timeout, "timeout", 0, "Per-attempt timeout (default from config)")
	return cmd
}

func printBody(w io.Writer, body domain.Body) error {
	switch body.Kind {
	case domain.BodyJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(body.JSON)
	case domain.BodyText:
		_, err := fmt.Fprintln(w, body.Text)
		return err
	}
	return nil
}
