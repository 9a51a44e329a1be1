// Package mdcrawl mirrors a documentation site into a tree of Markdown files
// and concatenates that tree into a single combined document.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package mdcrawl
