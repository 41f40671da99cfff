package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestString_PrefersLinkedVersion(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	require.Equal(t, "v1.2.3", String())
}

func TestFull_ShortCommit(t *testing.T) {
	oldV, oldC := Version, Commit
	t.Cleanup(func() { Version, Commit = oldV, oldC })

	Version = "v1.2.3"
	Commit = "0123456789abcdef"
	require.Equal(t, "v1.2.3 (0123456)", Full())

	Commit = "abc"
	require.Equal(t, "v1.2.3", Full())
}
