package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(CodeInternal, cause, "doing thing")

	require.Error(t, err)
	assert.Equal(t, CodeInternal, err.Code())
	assert.True(t, stdErrors.Is(err, cause))
}

func TestWrapNilCauseBehavesLikeNew(t *testing.T) {
	err := Wrap(CodeValidation, nil, "bad input")
	require.Error(t, err)
	assert.Equal(t, CodeValidation, err.Code())
	assert.Nil(t, err.Unwrap())
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeNotFound, "listing missing")
	wrapped := fmt.Errorf("outer: %w", inner)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeNotFound, typed.Code())
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestChainListsOutermostFirst(t *testing.T) {
	cause := fmt.Errorf("root")
	err := Wrap(CodeDependency, cause, "redis down")

	chain := Chain(err)
	require.Len(t, chain, 2)
	assert.Contains(t, chain[0], "DEPENDENCY_ERROR")
	assert.Equal(t, "root", chain[1])
}
