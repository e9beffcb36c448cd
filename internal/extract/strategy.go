package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Payload is a decoded submission body. The upstream form tool does not
// declare its shape, so every lookup treats the tree as untrusted.
type Payload map[string]interface{}

// Strategy is a total function from payload to an optional value. Strategies
// never fail; an unexpected shape simply yields not-found.
type Strategy func(p Payload) (interface{}, bool)

// First runs strategies in order and returns the first hit.
func First(p Payload, strategies ...Strategy) (interface{}, bool) {
	for _, s := range strategies {
		if v, ok := s(p); ok {
			return v, true
		}
	}
	return nil, false
}

// wrapperKeys are containers the form tool has been seen nesting the real
// submission under.
var wrapperKeys = []string{"submission", "responses", "client", "data", "form"}

// arrayKeys are keys the form tool has been seen carrying labelled
// question/answer records under.
var arrayKeys = []string{"answers", "data", "fields", "items", "questions"}

// labelKeys and valueKeys are the property names tried on each labelled record.
var (
	labelKeys = []string{"label", "name", "title", "question"}
	valueKeys = []string{"value", "text", "answer", "url"}
)

// DirectKey looks each key up on the payload root and on every known wrapper
// container, in order.
func DirectKey(keys ...string) Strategy {
	return func(p Payload) (interface{}, bool) {
		if p == nil {
			return nil, false
		}
		for _, key := range keys {
			if v, ok := lookup(p, key); ok {
				return v, true
			}
		}
		for _, wrapper := range wrapperKeys {
			inner, ok := p[wrapper].(map[string]interface{})
			if !ok {
				continue
			}
			for _, key := range keys {
				if v, ok := lookup(inner, key); ok {
					return v, true
				}
			}
		}
		return nil, false
	}
}

func lookup(m map[string]interface{}, key string) (interface{}, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

// LabelMatch scans every known array of labelled records for an item whose
// label contains one of the wanted phrases (case-insensitive), returning that
// item's value.
func LabelMatch(phrases ...string) Strategy {
	return func(p Payload) (interface{}, bool) {
		if p == nil {
			return nil, false
		}
		for _, items := range labelledArrays(p) {
			for _, phrase := range phrases {
				if v, ok := matchItems(items, phrase); ok {
					return v, true
				}
			}
		}
		return nil, false
	}
}

// labelledArrays collects every array of records the payload carries under a
// known array key, including submission.questions.
func labelledArrays(p Payload) [][]interface{} {
	var found [][]interface{}
	for _, key := range arrayKeys {
		if arr, ok := p[key].([]interface{}); ok {
			found = append(found, arr)
		}
	}
	if sub, ok := p["submission"].(map[string]interface{}); ok {
		for _, key := range arrayKeys {
			if arr, ok := sub[key].([]interface{}); ok {
				found = append(found, arr)
			}
		}
	}
	return found
}

func matchItems(items []interface{}, phrase string) (interface{}, bool) {
	phrase = strings.ToLower(phrase)
	for _, item := range items {
		record, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		label := ""
		for _, lk := range labelKeys {
			if s, ok := record[lk].(string); ok && s != "" {
				label = s
				break
			}
		}
		if label == "" || !strings.Contains(strings.ToLower(label), phrase) {
			continue
		}
		for _, vk := range valueKeys {
			if v, ok := lookup(record, vk); ok {
				return v, true
			}
		}
	}
	return nil, false
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// DeepEmailScan walks every string in the payload tree depth-first and
// returns the first substring that looks like an email address. Map keys are
// visited in sorted order so the result is deterministic.
func DeepEmailScan() Strategy {
	return func(p Payload) (interface{}, bool) {
		if p == nil {
			return nil, false
		}
		if email := scanForEmail(map[string]interface{}(p)); email != "" {
			return email, true
		}
		return nil, false
	}
}

func scanForEmail(node interface{}) string {
	switch v := node.(type) {
	case string:
		return emailPattern.FindString(v)
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if email := scanForEmail(v[k]); email != "" {
				return email
			}
		}
	case []interface{}:
		for _, item := range v {
			if email := scanForEmail(item); email != "" {
				return email
			}
		}
	}
	return ""
}

// asString coerces the scalar values the form tool emits into a trimmed
// string. Unexpected types yield "".
func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// asBool coerces checkbox-style values into a bool.
func asBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1", "complete", "completed":
			return true
		}
	case float64:
		return b != 0
	}
	return false
}
