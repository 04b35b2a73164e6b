package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/keel/internal/core/domain"
)

func TestBuildValue_EncodeDecodeRoundTrip(t *testing.T) {
	existing := domain.ExistingInputValue(domain.FileInfo{
		Device: 1, Inode: 2, Mode: 0o644, Size: 128, ModTime: 99,
	})
	successful := domain.SuccessfulCommandValue(0xDEADBEEF, []domain.FileInfo{
		{Size: 10, ModTime: 1},
		domain.MissingFileInfo(),
	})

	cases := []domain.BuildValue{
		domain.InvalidValue(),
		domain.VirtualInputValue(),
		existing,
		domain.MissingInputValue(),
		domain.FailedInputValue(),
		successful,
		domain.FailedCommandValue(),
		domain.SkippedCommandValue(),
		domain.TargetValue(),
	}

	for _, value := range cases {
		encoded := value.Encode()
		decoded, err := domain.DecodeValue(encoded)
		require.NoError(t, err)
		assert.Equal(t, value, decoded)
	}
}

func TestBuildValue_EncodeDecodeRoundTrip_EmptyOutputs(t *testing.T) {
	value := domain.SuccessfulCommandValue(7, nil)
	decoded, err := domain.DecodeValue(value.Encode())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), decoded.Signature)
	assert.Empty(t, decoded.Outputs)
}

func TestBuildValue_DecodeValue_Truncated(t *testing.T) {
	_, err := domain.DecodeValue(nil)
	assert.ErrorIs(t, err, domain.ErrTruncatedBytes)

	_, err = domain.DecodeValue([]byte{byte(domain.ValueKindExistingInput)})
	assert.ErrorIs(t, err, domain.ErrTruncatedBytes)

	_, err = domain.DecodeValue([]byte{byte(domain.ValueKindSuccessfulCommand), 0, 0})
	assert.ErrorIs(t, err, domain.ErrTruncatedBytes)
}

func TestBuildValue_DecodeValue_UnknownTag(t *testing.T) {
	_, err := domain.DecodeValue([]byte{0xFE})
	assert.ErrorIs(t, err, domain.ErrUnknownValueTag)
}

func TestBuildValue_IsScalar(t *testing.T) {
	scalar := []domain.BuildValue{
		domain.VirtualInputValue(),
		domain.ExistingInputValue(domain.FileInfo{}),
		domain.MissingInputValue(),
		domain.FailedInputValue(),
		domain.SuccessfulCommandValue(0, nil),
		domain.FailedCommandValue(),
		domain.SkippedCommandValue(),
	}
	for _, v := range scalar {
		assert.True(t, v.IsScalar(), "expected %v to be scalar", v.Kind)
	}

	nonScalar := []domain.BuildValue{domain.InvalidValue(), domain.TargetValue()}
	for _, v := range nonScalar {
		assert.False(t, v.IsScalar(), "expected %v to not be scalar", v.Kind)
	}
}
