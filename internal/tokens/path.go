package tokens

import (
	"reflect"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Separator delimits the segments of a token key.
const Separator = "/"

// Root is the outcome of root key discovery.
type Root struct {
	Key string
	// Found is false only for an empty document.
	Found bool
	// Degraded is set when no key lacked a separator and the first key was
	// taken instead.
	Degraded bool
}

// Warning returns the degraded-inference signal, or nil.
func (r Root) Warning() error {
	if !r.Degraded {
		return nil
	}
	return errors.WithDetails(ErrDegradedRootInference, "key", r.Key)
}

// FindRootKey returns the first key without a separator in document order.
// When every key has a separator, the first key is returned with Degraded set.
// An empty document yields a Root with Found unset.
func FindRootKey(doc *Document) (Root, error) {
	if doc == nil {
		return Root{}, errors.WithDetails(ErrInvalidInputKind, "kind", "nil")
	}
	for _, key := range doc.keys {
		if !strings.Contains(key, Separator) {
			return Root{Key: key, Found: true}, nil
		}
	}
	if len(doc.keys) > 0 {
		return Root{Key: doc.keys[0], Found: true, Degraded: true}, nil
	}
	return Root{}, nil
}

// ShortName returns the last segment of a key: "root/nav/item" is "item".
// Numeric keys are rendered in decimal; any other non-string yields "".
func ShortName(key any) string {
	var s string
	if k, ok := key.(string); ok {
		s = k
	} else {
		v := reflect.ValueOf(key)
		switch v.Kind() {
		case reflect.String:
			s = v.String()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			s = strconv.FormatInt(v.Int(), 10)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			s = strconv.FormatUint(v.Uint(), 10)
		case reflect.Float32:
			s = strconv.FormatFloat(v.Float(), 'f', -1, 32)
		case reflect.Float64:
			s = strconv.FormatFloat(v.Float(), 'f', -1, 64)
		default:
			return ""
		}
	}
	if i := strings.LastIndex(s, Separator); i >= 0 {
		return s[i+1:]
	}
	return s
}

// DirectChildKeys returns the keys exactly one segment below parent, in
// document order.
func DirectChildKeys(doc *Document, parent string) []string {
	if doc == nil {
		return nil
	}
	prefix := parent + Separator
	depth := strings.Count(parent, Separator) + 1

	var children []string
	for _, key := range doc.keys {
		if strings.HasPrefix(key, prefix) && strings.Count(key, Separator) == depth {
			children = append(children, key)
		}
	}
	return children
}
