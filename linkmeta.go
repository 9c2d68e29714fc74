// Package linkmeta turns an arbitrary URL into a link preview: it fetches the
// page (statically or through a JavaScript renderer), extracts title,
// description and product signals, and picks a single validated preview
// image out of many ranked candidates.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, sqlite/).
package linkmeta
