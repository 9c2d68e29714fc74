package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/linkmeta"
	main "github.com/fwojciec/linkmeta/cmd/linkmeta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expectedCommands = []string{"preview", "add", "list", "refresh"}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range expectedCommands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
	assert.Contains(t, helpOutput, "--render")
	assert.Contains(t, helpOutput, "--db")
}

func TestCLI_ParsesRefreshFlags(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"--render", "refresh", "--older-than", "36h", "-n", "5"})

	require.NoError(t, err)
	assert.True(t, cli.Render)
	assert.Equal(t, "36h0m0s", cli.Refresh.OlderThan.String())
	assert.Equal(t, 5, cli.Refresh.Limit)
}

func TestCLI_RefreshDefaultsToOneWeek(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"refresh"})

	require.NoError(t, err)
	assert.Equal(t, "168h0m0s", cli.Refresh.OlderThan.String())
}

func TestMain_Run_HelpShowsKongOutput(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	helpOutput := stdout.String()
	for _, cmd := range expectedCommands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "Flags:")
}

func TestMain_Run_NoCommand(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")

	err := m.Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

func TestMain_Run_ListOnEmptyDatabase(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "links.db")
	m := main.NewMain()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--db", dbPath, "list"}, stdout, stderr)

	require.NoError(t, err)
	assert.Equal(t, dbPath, m.DBPath)
	assert.Contains(t, stdout.String(), "No links found")
	assert.NotNil(t, m.LinkService)
	assert.Nil(t, m.PreviewService, "list should not wire the extraction pipeline")
}

func TestMain_Run_InvalidDatabasePath(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "missing", "dir", "test.db")

	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), []string{"list"}, &bytes.Buffer{}, stderr)

	require.Error(t, err)
	assert.Contains(t, stderr.String(), "LINKMETA_DB")
}

func TestMain_Run_PreviewDoesNotOpenDatabase(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "links.db")
	m := main.NewMain()

	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), []string{"--db", dbPath, "preview", "ftp://ex.com/file"}, &bytes.Buffer{}, stderr)

	require.Error(t, err)
	assert.Equal(t, linkmeta.EINVALID, linkmeta.ErrorCode(err))
	assert.Contains(t, stderr.String(), "invalid URL")
	assert.NotNil(t, m.PreviewService)
	assert.Nil(t, m.DB)
	assert.Nil(t, m.LinkService)
	assert.NoFileExists(t, dbPath)
}
