package dom

// Matcher selects elements during a query.
type Matcher func(*Element) bool

// Tag matches elements by tag name.
func Tag(tag string) Matcher {
	return func(e *Element) bool { return e.Tag() == tag }
}

// Class matches elements carrying class c.
func Class(c string) Matcher {
	return func(e *Element) bool { return e.HasClass(c) }
}

// Attr matches elements that have the named attribute.
func Attr(key string) Matcher {
	return func(e *Element) bool {
		_, ok := e.Attr(key)
		return ok
	}
}

// AttrValue matches elements whose named attribute equals val.
func AttrValue(key, val string) Matcher {
	return func(e *Element) bool {
		v, ok := e.Attr(key)
		return ok && v == val
	}
}
