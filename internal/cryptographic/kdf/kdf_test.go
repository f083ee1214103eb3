package kdf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	master := []byte("an externally supplied master secret")

	a, err := DeriveKey(master, "justice")
	require.NoError(t, err)
	require.Len(t, a, KeySize)

	again, err := DeriveKey(master, "justice")
	require.NoError(t, err)
	require.Equal(t, a, again, "same master and label should derive same key")

	b, err := DeriveKey(master, "standard")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "labels must separate keys")

	c, err := DeriveKey([]byte("another master"), "justice")
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestDeriveKeyRejectsEmptyMaster(t *testing.T) {
	_, err := DeriveKey(nil, "justice")
	require.Error(t, err)
}
