package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"matric-memory/internal/types"
)

func TestRequestKeyDeterministic(t *testing.T) {
	limit := 10
	req := types.SearchRequest{QueryText: "hello world", Limit: &limit}
	assert.Equal(t, requestKey("tenant_a", req), requestKey("tenant_a", req))
}

func TestRequestKeyDiffersBySchema(t *testing.T) {
	req := types.SearchRequest{QueryText: "hello world"}
	assert.NotEqual(t, requestKey("tenant_a", req), requestKey("tenant_b", req))
}

func TestRequestKeyDiffersByRequestFields(t *testing.T) {
	a := types.SearchRequest{QueryText: "hello"}
	b := types.SearchRequest{QueryText: "goodbye"}
	assert.NotEqual(t, requestKey("tenant_a", a), requestKey("tenant_a", b))
}

func TestRequestKeyIsHexSHA256(t *testing.T) {
	key := requestKey("tenant_a", types.SearchRequest{QueryText: "x"})
	assert.Len(t, key, 64)
}

func TestResultCacheKeyIsNamespaced(t *testing.T) {
	c := &ResultCache{namespace: "mm"}
	req := types.SearchRequest{QueryText: "x"}
	key := c.key("tenant_a", req)
	assert.Contains(t, key, "mm:search:")
}
