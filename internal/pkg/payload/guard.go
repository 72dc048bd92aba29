package payload

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Limits applied to every webhook body before any business logic sees it.
// Upstream checkout platforms send small flat objects; anything beyond these
// bounds is either broken or hostile.
const (
	MaxBodyBytes     = 100 * 1024
	MaxDepth         = 10
	MaxKeysPerObject = 50
	MaxTotalKeys     = 200
)

var (
	ErrTooLarge   = errors.New("payload too large")
	ErrNotObject  = errors.New("payload must be a JSON object")
	ErrTooComplex = errors.New("payload too complex")
)

// CheckSize rejects bodies over MaxBodyBytes. Callers apply it twice: once
// on the declared Content-Length and again on the bytes actually read, so a
// missing or lying header does not bypass the limit.
func CheckSize(n int) error {
	if n > MaxBodyBytes {
		return ErrTooLarge
	}
	return nil
}

// Decode parses the body and requires a JSON object at the top level.
// Arrays and scalars are rejected.
func Decode(body []byte) (map[string]interface{}, error) {
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

// CheckComplexity walks the decoded document and enforces the structural
// limits: nesting depth, keys per object and cumulative key count.
func CheckComplexity(obj map[string]interface{}) error {
	total := 0
	return walk(obj, 1, &total)
}

func walk(value interface{}, depth int, total *int) error {
	// Only containers deepen nesting; a scalar leaf sits at its parent's
	// depth. An object nested exactly MaxDepth levels is still legal.
	switch v := value.(type) {
	case map[string]interface{}:
		if depth > MaxDepth {
			return ErrTooComplex
		}
		if len(v) > MaxKeysPerObject {
			return ErrTooComplex
		}
		*total += len(v)
		if *total > MaxTotalKeys {
			return ErrTooComplex
		}
		for _, child := range v {
			if err := walk(child, depth+1, total); err != nil {
				return err
			}
		}
	case []interface{}:
		if depth > MaxDepth {
			return ErrTooComplex
		}
		for _, child := range v {
			if err := walk(child, depth+1, total); err != nil {
				return err
			}
		}
	}

	return nil
}
