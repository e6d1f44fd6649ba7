package indexing

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/adfharrison1/go-entitystore/pkg/domain"
)

const (
	// KeyNull is the index key for an explicit nil field value.
	KeyNull = "null"
	// KeyAbsent is the index key for a field missing from an entity.
	KeyAbsent = "undefined"
)

// Key encodes a field value as a canonical index key. The encoding is
// deterministic and equal-by-value inputs always encode identically:
// all integer kinds and floats with integral values share a
// representation, and map keys are sorted so structurally equal maps
// land in the same bucket regardless of construction order.
func Key(value interface{}) string {
	if value == nil {
		return KeyNull
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []interface{}:
		return arrayKey(v)
	case map[string]interface{}:
		return objectKey(v)
	case domain.Entity:
		return objectKey(v)
	}

	return reflectKey(value)
}

func arrayKey(values []interface{}) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Key(v)
	}
	return "arr:" + strings.Join(parts, ",")
}

func objectKey(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + Key(m[k])
	}
	return "obj:{" + strings.Join(parts, ",") + "}"
}

// reflectKey handles typed slices and maps that did not match the
// common cases above, and falls back to a type-tagged representation
// for everything else.
func reflectKey(value interface{}) string {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = Key(rv.Index(i).Interface())
		}
		return "arr:" + strings.Join(parts, ",")
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]interface{}, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = iter.Value().Interface()
			}
			return objectKey(m)
		}
	case reflect.Ptr:
		if rv.IsNil() {
			return KeyNull
		}
		return Key(rv.Elem().Interface())
	}

	return fmt.Sprintf("%T:%v", value, value)
}
