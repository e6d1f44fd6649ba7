package indexing_test

import (
	"testing"

	"github.com/adfharrison1/go-entitystore/pkg/indexing"
	"github.com/stretchr/testify/assert"
)

func TestKeyScalars(t *testing.T) {
	assert.Equal(t, "null", indexing.Key(nil))
	assert.Equal(t, "Anna", indexing.Key("Anna"))
	assert.Equal(t, "true", indexing.Key(true))
	assert.Equal(t, "false", indexing.Key(false))
	assert.Equal(t, "42", indexing.Key(42))
	assert.Equal(t, "-7", indexing.Key(int64(-7)))
	assert.Equal(t, "42", indexing.Key(uint8(42)))
	assert.Equal(t, "1.5", indexing.Key(1.5))
}

func TestKeyFloat32Precision(t *testing.T) {
	// Formatting must use the value's own precision; a 32-bit float
	// widened to 64 bits would otherwise leak representation noise
	// like "0.10000000149011612".
	assert.Equal(t, "0.1", indexing.Key(float32(0.1)))
	assert.Equal(t, "0.1", indexing.Key(float64(0.1)))
	assert.Equal(t, "2.5", indexing.Key(float32(2.5)))
}

func TestKeyNumericKindsConverge(t *testing.T) {
	// All integer kinds and integral floats must land in one bucket.
	expected := indexing.Key(30)
	assert.Equal(t, expected, indexing.Key(int8(30)))
	assert.Equal(t, expected, indexing.Key(int64(30)))
	assert.Equal(t, expected, indexing.Key(uint64(30)))
	assert.Equal(t, expected, indexing.Key(float64(30)))
	assert.Equal(t, expected, indexing.Key(float32(30)))
}

func TestKeyArrays(t *testing.T) {
	assert.Equal(t, "arr:1,a,null", indexing.Key([]interface{}{1, "a", nil}))
	assert.Equal(t, "arr:", indexing.Key([]interface{}{}))
	assert.Equal(t, "arr:arr:1,2,3", indexing.Key([]interface{}{[]interface{}{1, 2}, 3}))

	// Typed slices go through the reflective path
	assert.Equal(t, "arr:a,b", indexing.Key([]string{"a", "b"}))
	assert.Equal(t, "arr:1,2", indexing.Key([]int{1, 2}))
}

func TestKeyObjects(t *testing.T) {
	assert.Equal(t, "obj:{a=1,b=x}", indexing.Key(map[string]interface{}{"b": "x", "a": 1}))
	assert.Equal(t, "obj:{}", indexing.Key(map[string]interface{}{}))
	assert.Equal(t,
		"obj:{outer=obj:{inner=5}}",
		indexing.Key(map[string]interface{}{"outer": map[string]interface{}{"inner": 5}}))
}

func TestKeyObjectsOrderIndependent(t *testing.T) {
	a := map[string]interface{}{"x": 1, "y": 2, "z": 3}
	b := map[string]interface{}{"z": 3, "y": 2, "x": 1}
	assert.Equal(t, indexing.Key(a), indexing.Key(b))
}

func TestKeyTypedMap(t *testing.T) {
	assert.Equal(t, "obj:{lvl=5}", indexing.Key(map[string]int{"lvl": 5}))
}

func TestKeyPointers(t *testing.T) {
	v := 42
	assert.Equal(t, "42", indexing.Key(&v))

	var p *int
	assert.Equal(t, "null", indexing.Key(p))
}

func TestKeyFallback(t *testing.T) {
	type point struct{ X, Y int }
	key := indexing.Key(point{1, 2})
	assert.Contains(t, key, "point")
	assert.Contains(t, key, ":")
}

func TestKeyDeterministic(t *testing.T) {
	values := []interface{}{
		nil, "abc", 42, 1.5, true,
		[]interface{}{1, "a"},
		map[string]interface{}{"a": 1, "b": []interface{}{2, 3}},
	}
	for _, v := range values {
		assert.Equal(t, indexing.Key(v), indexing.Key(v))
	}
}
