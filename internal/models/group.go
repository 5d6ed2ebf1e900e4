package models

// Group represents a category/group for channels (e.g. group-title from M3U).
type Group struct {
	ID       int64   `json:"id,omitempty"`
	Name     string  `json:"name"`
	Image    *string `json:"image,omitempty"`
	SourceID int64   `json:"source_id,omitempty"`
}

// ExportedGroup is a group of a custom source with its channels, as written to
// an export file.
type ExportedGroup struct {
	Group    Group           `json:"group"`
	Channels []CustomChannel `json:"channels"`
}
