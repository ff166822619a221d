package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/knowcore"
)

// Run executes the route command.
func (c *RouteCmd) Run(deps *Dependencies) error {
	var html string
	if c.HTML != "" {
		data, err := os.ReadFile(c.HTML)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		html = string(data)
	}

	raw := &knowcore.RawDoc{SourceType: knowcore.SourceTypeURL, SourceURI: c.URI}
	adapter, err := deps.Router.SelectAdapter(deps.Ctx, raw, html)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", knowcore.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, adapter.Name)
	return nil
}
