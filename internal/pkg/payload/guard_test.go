package payload

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nestedObject builds {"a":{"a":{...}}} with the given number of object levels.
func nestedObject(levels int) []byte {
	var sb strings.Builder
	for i := 0; i < levels-1; i++ {
		sb.WriteString(`{"a":`)
	}
	sb.WriteString(`{"a":1}`)
	for i := 0; i < levels-1; i++ {
		sb.WriteString(`}`)
	}
	return []byte(sb.String())
}

func TestCheckSize(t *testing.T) {
	assert.NoError(t, CheckSize(MaxBodyBytes))
	assert.ErrorIs(t, CheckSize(MaxBodyBytes+1), ErrTooLarge)
}

func TestDecode_RejectsNonObjects(t *testing.T) {
	_, err := Decode([]byte(`[1,2,3]`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = Decode([]byte(`"hello"`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = Decode([]byte(`{not json`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotObject)
}

func TestDecode_Object(t *testing.T) {
	obj, err := Decode([]byte(`{"event":"sale_approved"}`))
	require.NoError(t, err)
	assert.Equal(t, "sale_approved", obj["event"])
}

func TestCheckComplexity_DepthBoundary(t *testing.T) {
	atLimit, err := Decode(nestedObject(MaxDepth))
	require.NoError(t, err)
	assert.NoError(t, CheckComplexity(atLimit))

	overLimit, err := Decode(nestedObject(MaxDepth + 1))
	require.NoError(t, err)
	assert.ErrorIs(t, CheckComplexity(overLimit), ErrTooComplex)
}

func TestCheckComplexity_ScalarLeavesDoNotDeepen(t *testing.T) {
	// An object at the depth limit may still hold multiple scalar fields;
	// only containers count as a nesting level.
	var sb strings.Builder
	for i := 0; i < MaxDepth-1; i++ {
		sb.WriteString(`{"a":`)
	}
	sb.WriteString(`{"id":"HP123","amount":26.99,"approved":true}`)
	for i := 0; i < MaxDepth-1; i++ {
		sb.WriteString(`}`)
	}

	obj, err := Decode([]byte(sb.String()))
	require.NoError(t, err)
	assert.NoError(t, CheckComplexity(obj))
}

func TestCheckComplexity_KeysPerObject(t *testing.T) {
	build := func(n int) map[string]interface{} {
		obj := make(map[string]interface{}, n)
		for i := 0; i < n; i++ {
			obj[fmt.Sprintf("k%d", i)] = i
		}
		return obj
	}

	assert.NoError(t, CheckComplexity(build(MaxKeysPerObject)))
	assert.ErrorIs(t, CheckComplexity(build(MaxKeysPerObject+1)), ErrTooComplex)
}

func TestCheckComplexity_TotalKeys(t *testing.T) {
	// 5 sibling objects with 41 keys each stay under the per-object limit
	// but exceed the 200-key cumulative limit.
	obj := make(map[string]interface{})
	for i := 0; i < 5; i++ {
		child := make(map[string]interface{})
		for j := 0; j < 41; j++ {
			child[fmt.Sprintf("k%d", j)] = j
		}
		obj[fmt.Sprintf("child%d", i)] = child
	}
	assert.ErrorIs(t, CheckComplexity(obj), ErrTooComplex)
}

func TestCheckComplexity_ArraysCountTowardDepth(t *testing.T) {
	obj, err := Decode([]byte(`{"data":[{"purchase":{"price":26.99}}]}`))
	require.NoError(t, err)
	assert.NoError(t, CheckComplexity(obj))
}
