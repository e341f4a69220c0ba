package params

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// PathInt parses an integer path value such as {group_id}.
func PathInt(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

// QueryBool reads a bool-like query value, falling back to def when absent.
func QueryBool(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("%s need to be bool-like string", name)
	}
	return b, nil
}

// QueryInt reads a non-negative integer query value, falling back to def when absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def, fmt.Errorf("invalid %s value", name)
	}
	return n, nil
}

// QueryInts reads a comma separated list of integers such as positions=1,2,3.
func QueryInts(r *http.Request, name string) ([]int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	res := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q", name, part)
		}
		res = append(res, n)
	}
	return res, nil
}
