package results

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// #region param-hash

// ParamHash produces a deterministic digest over a parameter value by
// marshaling it to JSON, flattening to sorted key/value pairs and hashing
// the result. It also returns the canonical JSON so callers persist
// exactly what was hashed. Nested objects are flattened with dotted keys.
func ParamHash(params any) (hash, canonical string, err error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", "", fmt.Errorf("marshal params: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", "", fmt.Errorf("decode params: %w", err)
	}

	var pairs []string
	flatten("", decoded, &pairs)
	sort.Strings(pairs)

	sum := md5.Sum([]byte(strings.Join(pairs, ";")))
	return fmt.Sprintf("%x", sum), string(raw), nil
}

func flatten(prefix string, v any, pairs *[]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, child, pairs)
		}
	case []any:
		for i, child := range t {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), child, pairs)
		}
	default:
		*pairs = append(*pairs, fmt.Sprintf("%s=%v", prefix, t))
	}
}

// #endregion param-hash
