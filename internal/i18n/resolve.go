package i18n

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// bilingualKeys are the object keys whose bilingual values ResolveTree
// collapses. Anything else is walked but never collapsed.
var bilingualKeys = map[string]struct{}{
	"name":        {},
	"description": {},
	"title":       {},
}

// ResolveTree returns a deep copy of payload, obtained through a JSON round
// trip, in which every bilingual object under a name, description or title
// key is replaced by its resolved string. Running it twice is a no-op the
// second time because resolved fields are no longer objects.
func ResolveTree(payload any, lang Lang) (any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return ResolveJSON(raw, lang)
}

// ResolveJSON is ResolveTree for a document that is already encoded.
func ResolveJSON(raw []byte, lang Lang) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	return walk(tree, lang), nil
}

func walk(v any, lang Lang) any {
	switch node := v.(type) {
	case []any:
		for i := range node {
			node[i] = walk(node[i], lang)
		}
		return node
	case map[string]any:
		for key, val := range node {
			child, isObj := val.(map[string]any)
			if _, ok := bilingualKeys[key]; ok && isObj && isBilingual(child) {
				node[key] = resolveMap(child, lang)
				continue
			}
			node[key] = walk(val, lang)
		}
		return node
	default:
		return v
	}
}

// TranslatePaths resolves the bilingual objects found at the given dotted
// paths (for example "category.name" or "discount.label"). The input is not
// modified: doc and every map along a rewritten path are copied. Paths whose
// intermediate segments are missing or not objects are skipped, and a leaf
// is only rewritten when it is a non-null object.
func TranslatePaths(doc map[string]any, lang Lang, paths ...string) map[string]any {
	if doc == nil {
		return nil
	}

	out := cloneMap(doc)
	for _, path := range paths {
		if path == "" {
			continue
		}
		translatePath(out, lang, strings.Split(path, "."))
	}
	return out
}

func translatePath(obj map[string]any, lang Lang, segments []string) {
	for _, seg := range segments[:len(segments)-1] {
		next, ok := obj[seg].(map[string]any)
		if !ok || next == nil {
			return
		}
		next = cloneMap(next)
		obj[seg] = next
		obj = next
	}

	leaf := segments[len(segments)-1]
	if val, ok := obj[leaf].(map[string]any); ok && val != nil {
		obj[leaf] = resolveMap(val, lang)
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ToDocument converts a value into its generic JSON object form so it can be
// handed to TranslatePaths. Values that do not encode to an object are
// rejected.
func ToDocument(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
