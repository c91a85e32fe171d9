// Package models defines the core domain models for CodeCanvas.
//
// # Models
//
//   - SourceDocument: the three editable sources (markup, style, script)
//   - Project: a saved SourceDocument with a title and an owner
//   - ProjectSummary: a Project as listed in the gallery, with its author's username
//   - User: a registered account
//
// # Design Principles
//
// 1. **Sources are opaque**: markup, style and script are never parsed or validated here
// 2. **Avoid circular references**: Use ID strings instead of pointers for relationships
// 3. **Storage-agnostic**: timestamps are Unix milliseconds so every layer agrees on ordering
//
// # Ownership
//
// Projects are readable by everyone (the gallery) and writable only by their owner.
// OwnerID is set once on creation and never changes.
package models
