package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/keel/internal/core/domain"
)

func TestBuildKey_EncodeDecodeRoundTrip(t *testing.T) {
	cases := []domain.BuildKey{
		domain.CommandKey("compile-main"),
		domain.NodeKey("src/main.c"),
		domain.TargetKey("all"),
		domain.NodeKey(""),
	}

	for _, key := range cases {
		encoded := key.Encode()
		decoded, err := domain.DecodeKey(encoded)
		require.NoError(t, err)
		assert.Equal(t, key, decoded)
	}
}

func TestBuildKey_DecodeKey_Truncated(t *testing.T) {
	_, err := domain.DecodeKey(nil)
	assert.ErrorIs(t, err, domain.ErrTruncatedBytes)
}

func TestBuildKey_DecodeKey_UnknownTag(t *testing.T) {
	_, err := domain.DecodeKey([]byte{0xFF, 'x'})
	assert.ErrorIs(t, err, domain.ErrUnknownKeyTag)
}

func TestBuildKey_String(t *testing.T) {
	assert.Equal(t, "Command{a}", domain.CommandKey("a").String())
	assert.Equal(t, "Node{b}", domain.NodeKey("b").String())
	assert.Equal(t, "Target{c}", domain.TargetKey("c").String())
}

func TestBuildKey_Encode_KeysWithSameKindDiffer(t *testing.T) {
	a := domain.NodeKey("a").Encode()
	b := domain.NodeKey("b").Encode()
	assert.NotEqual(t, a, b)
}
