package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/linkmeta"
	main "github.com/fwojciec/linkmeta/cmd/linkmeta"
	"github.com/fwojciec/linkmeta/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists links with ID, fetch date, title and URL", func(t *testing.T) {
		t.Parallel()

		var filter linkmeta.LinkFilter
		links := &mock.LinkService{
			FindLinksFn: func(_ context.Context, f linkmeta.LinkFilter) ([]*linkmeta.Link, error) {
				filter = f
				return []*linkmeta.Link{
					{
						ID:        "link-123",
						URL:       "https://shop.example/kettle",
						Title:     "Kettle",
						FetchedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
					},
					{
						ID:        "link-456",
						URL:       "https://ex.com/down",
						Title:     "https://ex.com/down",
						Failed:    true,
						FetchedAt: time.Date(2026, 1, 16, 11, 0, 0, 0, time.UTC),
					},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Links:  links,
		}

		err := (&main.ListCmd{Limit: 20}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, 20, filter.Limit)
		assert.Equal(t,
			"link-123  2026-01-15  Kettle  https://shop.example/kettle\n"+
				"link-456  2026-01-16  https://ex.com/down  https://ex.com/down  [failed]\n",
			stdout.String())
	})

	t.Run("shows helpful message when no links exist", func(t *testing.T) {
		t.Parallel()

		links := &mock.LinkService{
			FindLinksFn: func(context.Context, linkmeta.LinkFilter) ([]*linkmeta.Link, error) {
				return []*linkmeta.Link{}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Links:  links,
		}

		err := (&main.ListCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No links")
	})

	t.Run("returns error when FindLinks fails", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("database connection failed")
		links := &mock.LinkService{
			FindLinksFn: func(context.Context, linkmeta.LinkFilter) ([]*linkmeta.Link, error) {
				return nil, dbErr
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Links:  links,
		}

		err := (&main.ListCmd{}).Run(deps)

		require.ErrorIs(t, err, dbErr)
		assert.Contains(t, stderr.String(), "error:")
	})
}
