package models

// Project is a saved playground owned by one account.
type Project struct {
	// ID is assigned by the store on creation (UUID format).
	ID string

	// Title is the human-readable project name.
	Title string

	// Source holds the markup, style and script of the project.
	Source SourceDocument

	// OwnerID is the ID of the user who created the project. Immutable.
	OwnerID string

	// CreatedAt is the Unix timestamp (milliseconds) when the project was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp (milliseconds) of the last save.
	// It strictly increases on every save.
	UpdatedAt int64
}

// ProjectSummary is a gallery row: a project together with its author's username.
type ProjectSummary struct {
	Project
	AuthorUsername string
}

// ProjectOrder selects the gallery sort order.
type ProjectOrder int

const (
	// OrderUpdatedDesc lists the most recently saved projects first.
	OrderUpdatedDesc ProjectOrder = iota
	// OrderCreatedDesc lists the newest projects first.
	OrderCreatedDesc
	// OrderTitleAsc lists projects alphabetically.
	OrderTitleAsc
)

// ProjectFilter narrows a gallery listing. The zero value lists every project.
type ProjectFilter struct {
	// OwnerID restricts the listing to one account's projects when set.
	OwnerID string
	// Query matches a substring of the title (case-insensitive) when set.
	Query string
	// Limit caps the number of rows; zero means no limit.
	Limit int
	// Offset skips that many rows of the ordered listing.
	Offset int
	// OrderBy selects the sort order.
	OrderBy ProjectOrder
}
