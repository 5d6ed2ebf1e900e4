package models

import "time"

// Source represents an IPTV source (an M3U file or link, an Xtream account or
// a custom collection).
type Source struct {
	ID          int64      `json:"id,omitempty"`
	Name        string     `json:"name"`
	SourceType  SourceType `json:"source_type"`
	URL         *string    `json:"url,omitempty"`
	Username    *string    `json:"username,omitempty"`
	Password    *string    `json:"password,omitempty"`
	Enabled     bool       `json:"enabled"`
	UseTvgID    *bool      `json:"use_tvg_id,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// NewCustomSource returns an enabled custom source named name.
func NewCustomSource(name string) Source {
	return Source{Name: name, SourceType: SourceTypeCustom, Enabled: true}
}
