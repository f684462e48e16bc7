package envelope

import (
	"sync"

	"github.com/ohler55/ojg/jp"
)

// pathCache holds compiled JSONPath expressions keyed by their source.
type pathCache struct {
	mu    sync.RWMutex
	exprs map[string]jp.Expr
}

var paths = &pathCache{exprs: make(map[string]jp.Expr)}

func (c *pathCache) get(path string) (jp.Expr, error) {
	c.mu.RLock()
	if cached, ok := c.exprs[path]; ok {
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.exprs[path] = expr
	c.mu.Unlock()

	return expr, nil
}

// Lookup returns the first value found at the JSONPath in body, or nil when
// nothing matches or the path is invalid.
func Lookup(body any, path string) any {
	if body == nil {
		return nil
	}
	if path == "$" {
		return body
	}
	expr, err := paths.get(path)
	if err != nil {
		return nil
	}
	return expr.First(body)
}

// LookupObject is Lookup restricted to JSON objects.
func LookupObject(body any, path string) (map[string]any, bool) {
	m, ok := Lookup(body, path).(map[string]any)
	return m, ok
}

// LookupFirst returns the first non-nil value among the given paths.
func LookupFirst(body any, paths ...string) any {
	for _, p := range paths {
		if v := Lookup(body, p); v != nil {
			return v
		}
	}
	return nil
}
