package cliargs

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("name", "", "")
	fs.StringArray("vault", nil, "")
	return fs
}

func TestSelfAssignedFlag(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--name=ada"}))
	name, err := fs.GetString("name")
	require.NoError(t, err)
	require.Equal(t, "ada", name)
}

func TestSpaceSeparatedFlag(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--name", "ada"}))
	name, err := fs.GetString("name")
	require.NoError(t, err)
	require.Equal(t, "ada", name)
}

func TestListArgumentAccumulates(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--vault", "people", "--vault", "widgets"}))
	vaults, err := fs.GetStringArray("vault")
	require.NoError(t, err)
	require.Equal(t, []string{"people", "widgets"}, vaults)
}

func TestCheckRequiredFailsWhenFlagNeverSet(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse(nil))

	err := CheckRequired(fs, "name")
	require.Error(t, err)
	var missing *MissingArgumentError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "name", missing.Name)
}

func TestCheckRequiredPassesWhenFlagSet(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--name=ada"}))
	require.NoError(t, CheckRequired(fs, "name"))
}

func TestWrapParseErrorNamesUnknownToken(t *testing.T) {
	fs := newFlagSet()
	err := fs.Parse([]string{"--bogus=1"})
	require.Error(t, err)

	wrapped := WrapParseError(err)
	var invalid *InvalidArgumentError
	require.ErrorAs(t, wrapped, &invalid)
	require.Equal(t, "--bogus", invalid.Token)
}

func TestWrapParseErrorPassesThroughOtherErrors(t *testing.T) {
	err := WrapParseError(nil)
	require.NoError(t, err)

	fs := newFlagSet()
	parseErr := fs.Parse([]string{"--name"})
	require.Error(t, parseErr)
	require.Equal(t, parseErr, WrapParseError(parseErr))
}
