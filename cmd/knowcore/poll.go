package main

import (
	"fmt"

	"github.com/fwojciec/knowcore/ingest"
)

// Run executes the poll command. It returns when the context is canceled.
func (c *PollCmd) Run(deps *Dependencies) error {
	p := &ingest.Poller{
		RawDocs:     deps.RawDocs,
		Ingester:    deps.Pipeline,
		Interval:    deps.Config.PollInterval(),
		Concurrency: deps.Config.Poll.Concurrency,
		Logger:      deps.Logger,
	}
	if c.Interval > 0 {
		p.Interval = c.Interval
	}
	if p.Interval <= 0 {
		p.Interval = ingest.DefaultPollInterval
	}
	if c.Concurrency > 0 {
		p.Concurrency = c.Concurrency
	}

	fmt.Fprintf(deps.Stdout, "Polling %s every %s\n", deps.Config.Paths.RawDocs, p.Interval)
	return p.Run(deps.Ctx)
}
