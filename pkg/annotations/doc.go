// Package annotations extracts inline documentation annotations from proto
// comments.
//
// # Format
//
// An annotation is a bracketed tag inside a comment:
//
//	// [#protodoc-title: Rate limit]
//	// [#not-implemented-hide:]
//	// [#extension: envoy.filters.http.ratelimit]
//
// Only a fixed vocabulary of names is accepted; anything else is reported as
// ErrUnknownAnnotation so typos surface at build time instead of leaking into
// rendered output.
//
// # Usage Example
//
//	c, err := annotations.ParseComment(leadingComment)
//	if err != nil {
//		return err
//	}
//	if c.Hidden() {
//		return "", nil
//	}
//	text := c.Text()
package annotations
