package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePreservesOrderDropsEmpties(t *testing.T) {
	got := Parse("/tmp/a.bc\n/tmp/b.bc\n")
	require.Equal(t, []string{"/tmp/a.bc", "/tmp/b.bc"}, got)

	got = Parse("/x/p.bc\n\n\n/y/q.bc")
	require.Equal(t, []string{"/x/p.bc", "/y/q.bc"}, got)
}

func TestParseEmpty(t *testing.T) {
	require.Empty(t, Parse(""))
	require.Empty(t, Parse("\n\n"))
}

func TestDirGroups(t *testing.T) {
	g := NewDirGroups()
	g.Add("/x/p.bc")
	g.Add("/y/q.bc")
	g.Add("/x/r.bc")

	require.Equal(t, []string{"/x", "/y"}, g.Dirs())
	require.Equal(t, []string{"p.bc", "r.bc"}, g.Files("/x"))
	require.Equal(t, []string{"q.bc"}, g.Files("/y"))
	require.Equal(t, 2, g.Len())
}

func TestDirGroupsDedup(t *testing.T) {
	g := NewDirGroups()
	g.Add("/x/p.bc")
	g.Add("/x/p.bc")

	require.Equal(t, []string{"p.bc"}, g.Files("/x"))
}
