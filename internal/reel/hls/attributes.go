package hls

import "strings"

// Attribute is one NAME=VALUE pair of an HLS attribute list. Value keeps
// its raw form, quotes included.
type Attribute struct {
	Name  string
	Value string
}

// Attributes is an ordered HLS attribute list.
type Attributes []Attribute

// ParseAttributes splits an attribute list on commas that sit outside
// quoted strings.
func ParseAttributes(s string) Attributes {
	var (
		out     Attributes
		start   int
		inQuote bool
	)
	flush := func(end int) {
		part := strings.TrimSpace(s[start:end])
		if part == "" {
			return
		}
		name, value, _ := strings.Cut(part, "=")
		out = append(out, Attribute{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(s))
	return out
}

// Get returns the unquoted value of name, or "".
func (a Attributes) Get(name string) string {
	for _, attr := range a {
		if attr.Name == name {
			return strings.Trim(attr.Value, `"`)
		}
	}
	return ""
}

// Set replaces the raw value of name, appending it if absent.
func (a *Attributes) Set(name, raw string) {
	for i := range *a {
		if (*a)[i].Name == name {
			(*a)[i].Value = raw
			return
		}
	}
	*a = append(*a, Attribute{Name: name, Value: raw})
}

func (a Attributes) String() string {
	var b strings.Builder
	for i, attr := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(attr.Name)
		b.WriteByte('=')
		b.WriteString(attr.Value)
	}
	return b.String()
}
