package extract

import "strings"

// URLList normalizes the shapes file-bearing answers arrive in: a single URL
// string, an object carrying a url property, or an array of either. The
// result is a de-duplicated list in first-seen order.
func URLList(v interface{}) []string {
	var urls []string
	seen := make(map[string]bool)

	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || !strings.HasPrefix(raw, "http") || seen[raw] {
			return
		}
		seen[raw] = true
		urls = append(urls, raw)
	}

	var collect func(node interface{})
	collect = func(node interface{}) {
		switch item := node.(type) {
		case string:
			add(item)
		case map[string]interface{}:
			for _, key := range []string{"url", "src", "href", "link"} {
				if s, ok := item[key].(string); ok {
					add(s)
					return
				}
			}
		case []interface{}:
			for _, nested := range item {
				collect(nested)
			}
		}
	}

	collect(v)
	return urls
}
