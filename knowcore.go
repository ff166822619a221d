// Package knowcore converts heterogeneous HTML documents into a normalized,
// structured Document. Adapters describe, per site or generically, where
// metadata and content blocks live in an HTML tree; the ingest pipeline
// extracts blocks in document order, normalizes them into sections and
// resolves figure images into content-addressed asset files.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, yaml/).
package knowcore

// ParserVersion identifies the extraction rules that produced a Document.
const ParserVersion = "0.2.0"
