package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_splitPairs(t *testing.T) {
	pairs, err := splitPairs("prefix=J;max-keys=2;versions=''", "=")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"prefix":   "J",
		"max-keys": "2",
		"versions": "",
	}, pairs)

	_, err = splitPairs("not-a-pair", "=")
	assert.Error(t, err)
}

func TestCommand_requestSpec_Action(t *testing.T) {
	cmd := Command{
		Method: "get",
		Bucket: "uv-bucket-3",
		Action: "versions",
	}

	spec, err := cmd.requestSpec()
	require.NoError(t, err)

	// The action is a subresource: an empty-valued query parameter
	value, ok := spec.Query["versions"]
	assert.True(t, ok)
	assert.Equal(t, "", value)
}

func TestCommand_requestSpec_ActionWithParameters(t *testing.T) {
	cmd := Command{
		Method:     "get",
		Bucket:     "uv-bucket-3",
		Action:     "uploads",
		Parameters: "max-uploads=10",
	}

	spec, err := cmd.requestSpec()
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"uploads":     "",
		"max-uploads": "10",
	}, spec.Query)
}
