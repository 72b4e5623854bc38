// Package domain defines the core business types for the newsletter service.
//
// Types in this package are validated value objects and entities with no
// database dependencies and no HTTP concerns. They are the shared language
// between handlers, the subscription workflow, and the store.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - Validation lives here as pure functions on raw input
//   - Constants and enums belong here
package domain
