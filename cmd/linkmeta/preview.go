package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/linkmeta"
)

// Run executes the preview command.
func (c *PreviewCmd) Run(deps *Dependencies) error {
	p, err := deps.Previews.Preview(deps.Ctx, &linkmeta.PreviewRequest{
		URL:             c.URL,
		Title:           c.Title,
		PreferRendering: deps.Render,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "# %s\n\n%s\n\n", p.FinalTitle, p.Content)
	writeMetadata(deps.Stdout, p.Metadata)

	if c.Body && p.BodyText != "" {
		fmt.Fprintf(deps.Stdout, "\n%s\n", p.BodyText)
	}

	return nil
}

// writeMetadata prints the extracted signals one per line, skipping empty
// fields.
func writeMetadata(w io.Writer, md linkmeta.LinkMetadata) {
	kind := md.Kind
	if kind == "" {
		kind = linkmeta.KindGeneral
	}
	fmt.Fprintf(w, "kind: %s\n", kind)
	if md.ProductName != "" {
		fmt.Fprintf(w, "product: %s\n", md.ProductName)
	}
	if md.Price != "" {
		fmt.Fprintf(w, "price: %s\n", joinNonEmpty(md.Price, md.Currency))
	}
	if md.AvailabilityText != "" {
		fmt.Fprintf(w, "availability: %s\n", md.AvailabilityText)
	}
	if md.InStock != linkmeta.StockUnknown {
		fmt.Fprintf(w, "stock: %s\n", md.InStock)
	}
}

func joinNonEmpty(a, b string) string {
	if b == "" {
		return a
	}
	return a + " " + b
}
