package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fwojciec/linkmeta"
	"github.com/fwojciec/linkmeta/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkRefreshCycle measures a refresh pass over stored links: list the
// stale set and rewrite each one.
func BenchmarkRefreshCycle(b *testing.B) {
	const links = 100

	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	ctx := context.Background()
	svc := sqlite.NewLinkService(db)
	for i := 0; i < links; i++ {
		require.NoError(b, svc.CreateLink(ctx, &linkmeta.Link{
			URL:   fmt.Sprintf("https://shop.example/item/%d", i),
			Title: fmt.Sprintf("Item %d", i),
		}))
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		found, err := svc.FindLinks(ctx, linkmeta.LinkFilter{})
		if err != nil {
			b.Fatal(err)
		}
		for _, link := range found {
			_, err := svc.UpdateLink(ctx, link.ID, linkmeta.LinkUpdate{
				Title:   link.Title,
				Content: fmt.Sprintf("**Source:** [shop.example](%s)\n\nrun %d", link.URL, i),
				Metadata: linkmeta.LinkMetadata{
					Kind:  linkmeta.KindProduct,
					Price: "19.99",
				},
			})
			if err != nil {
				b.Fatal(err)
			}
		}
	}
}
