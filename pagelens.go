// Package pagelens turns rendered web pages into bounded, structured,
// LLM-consumable records: content blocks, a depth-limited DOM tree,
// link and image inventories and heuristic study metadata.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, rod/).
package pagelens
