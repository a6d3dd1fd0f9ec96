package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode_DeterministicPerInput(t *testing.T) {
	encoder := NewEncoder("unit-test-salt")

	first := encoder.Encode("secret")
	second := encoder.Encode("secret")
	require.Equal(t, first, second)
	require.NotEqual(t, "secret", first)
}

func TestEncode_DifferentInputsDiffer(t *testing.T) {
	encoder := NewEncoder("unit-test-salt")
	require.NotEqual(t, encoder.Encode("secret"), encoder.Encode("Secret"))
}

func TestEncode_SaltChangesOutput(t *testing.T) {
	require.NotEqual(t, NewEncoder("a").Encode("secret"), NewEncoder("b").Encode("secret"))
}
