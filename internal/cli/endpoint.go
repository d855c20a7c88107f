package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// NewEndpointCmd создаёт группу команд для endpoint'ов работающего агента.
func NewEndpointCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoint",
		Short: "Manage endpoints of a running agent",
	}

	cmd.AddCommand(
		newEndpointListCmd(clientFn, outputFn),
		newEndpointShowCmd(clientFn, outputFn),
		newEndpointConnectCmd(clientFn, outputFn),
		newEndpointCloseCmd(clientFn, outputFn),
	)

	return cmd
}

func newEndpointListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			eps, err := clientFn().ListEndpoints()
			if err != nil {
				return err
			}

			outputFn().Endpoints(eps)
			return nil
		},
	}
}

func newEndpointShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show CID",
		Short: "Show endpoint details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, err := clientFn().GetEndpoint(args[0])
			if err != nil {
				return err
			}

			outputFn().Endpoint(*ep)
			return nil
		},
	}
}

func newEndpointConnectCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "connect CID",
		Short: "Connect an endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			ep, err := clientFn().ConnectEndpoint(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Endpoint connected: %s", ep.ID))
			out.Endpoint(*ep)
			return nil
		},
	}
}

func newEndpointCloseCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "close CID",
		Short: "Close endpoint connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			ep, err := clientFn().CloseEndpoint(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Endpoint closed: %s", ep.ID))
			out.Endpoint(*ep)
			return nil
		},
	}
}

// NewBindingCmd создаёт группу команд для именованных ссылок агента.
func NewBindingCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "binding",
		Short: "Resolve configured bindings on a running agent",
	}

	cmd.AddCommand(newBindingConnectCmd(clientFn, outputFn))
	return cmd
}

func newBindingConnectCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var query, header []string

	cmd := &cobra.Command{
		Use:   "connect NAME",
		Short: "Resolve a binding and connect the endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			req := BindingRequest{Query: url.Values{}, Header: http.Header{}}
			for _, kv := range query {
				k, v, err := splitKeyValue(kv)
				if err != nil {
					return err
				}
				req.Query.Add(k, v)
			}
			for _, kv := range header {
				k, v, err := splitKeyValue(kv)
				if err != nil {
					return err
				}
				req.Header.Add(k, v)
			}

			ep, err := clientFn().ConnectBinding(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Binding %s resolved to %s", args[0], ep.ID))
			out.Endpoint(*ep)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&query, "query", nil, "Query parameter key=value (repeatable)")
	cmd.Flags().StringArrayVar(&header, "header", nil, "Header key=value (repeatable)")

	return cmd
}

func splitKeyValue(s string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return "", "", fmt.Errorf("expected key=value, got %q", s)
	}
	return strings.TrimSpace(k), v, nil
}
