package main

import (
	"fmt"

	"github.com/fwojciec/linkmeta"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	links, err := deps.Links.FindLinks(deps.Ctx, linkmeta.LinkFilter{Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	if len(links) == 0 {
		fmt.Fprintln(deps.Stdout, "No links found. Use 'linkmeta add' to save one.")
		return nil
	}

	for _, l := range links {
		status := ""
		if l.Failed {
			status = "  [failed]"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s%s\n",
			l.ID, l.FetchedAt.Format("2006-01-02"), l.Title, l.URL, status)
	}

	return nil
}
