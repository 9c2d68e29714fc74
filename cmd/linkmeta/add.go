package main

import (
	"fmt"

	"github.com/fwojciec/linkmeta"
)

// Run executes the add command. A link whose preview fails is still saved,
// with failure placeholder content, so a later refresh can retry it.
func (c *AddCmd) Run(deps *Dependencies) error {
	link := &linkmeta.Link{URL: c.URL, Title: c.Title}
	if err := link.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	p, err := deps.Previews.Preview(deps.Ctx, &linkmeta.PreviewRequest{
		URL:             c.URL,
		Title:           c.Title,
		PreferRendering: deps.Render,
	})
	switch {
	case err != nil && deps.Ctx.Err() != nil:
		return deps.Ctx.Err()
	case err != nil:
		fmt.Fprintf(deps.Stderr, "warning: preview failed: %s\n", errorText(err))
		if link.Title == "" {
			link.Title = c.URL
		}
		link.Content = linkmeta.FormatFailure(c.URL, err)
		link.Failed = true
	default:
		link.URL = p.URL
		link.Title = p.FinalTitle
		link.Content = p.Content
		link.ImageURL = p.ImageURL
		link.Metadata = p.Metadata
	}

	if err := deps.Links.CreateLink(deps.Ctx, link); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added link %q (%s)\n", link.Title, link.ID)
	return nil
}
