package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/keel/internal/core/domain"
)

func TestNewNode_VirtualNamingHeuristic(t *testing.T) {
	assert.True(t, domain.NewNode("<phony>").IsVirtual)
	assert.False(t, domain.NewNode("src/main.c").IsVirtual)
	assert.False(t, domain.NewNode("<half-open").IsVirtual)
}

func TestNode_ConfigureAttribute_IsVirtual(t *testing.T) {
	n := domain.NewNode("out.o")
	require.NoError(t, n.ConfigureAttribute("is-virtual", "true"))
	assert.True(t, n.IsVirtual)

	require.NoError(t, n.ConfigureAttribute("is-virtual", "false"))
	assert.False(t, n.IsVirtual)
}

func TestNode_ConfigureAttribute_Unknown(t *testing.T) {
	n := domain.NewNode("out.o")

	err := n.ConfigureAttribute("color", "red")
	assert.ErrorIs(t, err, domain.ErrUnknownNodeAttribute)

	err = n.ConfigureAttribute("is-virtual", "maybe")
	assert.ErrorIs(t, err, domain.ErrUnknownNodeAttribute)
}

func TestNode_GetFileInfo_VirtualNodeErrors(t *testing.T) {
	n := domain.NewNode("<phony>")
	_, err := n.GetFileInfo()
	assert.ErrorIs(t, err, domain.ErrVirtualNodeFileInfo)
}

func TestNode_GetFileInfo_MissingFile(t *testing.T) {
	n := domain.NewNode("/nonexistent/path/does/not/exist")
	fi, err := n.GetFileInfo()
	require.NoError(t, err)
	assert.True(t, fi.Missing)
}

func TestNode_AddProducer(t *testing.T) {
	n := domain.NewNode("out.o")
	assert.False(t, n.HasProducer())

	require.NoError(t, n.AddProducer("compile"))
	assert.True(t, n.HasProducer())

	// Re-adding the same producer is a no-op, not an error.
	require.NoError(t, n.AddProducer("compile"))
	assert.Len(t, n.Producers, 1)

	err := n.AddProducer("other-compile")
	assert.ErrorIs(t, err, domain.ErrMultipleProducers)
}
