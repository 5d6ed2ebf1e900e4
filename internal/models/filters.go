package models

// Filters is a browse/search request coming from the UI.
type Filters struct {
	Page       int         `json:"page"`                  // 1-based
	Query      *string     `json:"query,omitempty"`       // substring; nil matches everything
	MediaTypes []MediaType `json:"media_types,omitempty"` // ignored when SeriesID is set
	SourceIDs  []int64     `json:"source_ids"`
	ViewType   ViewType    `json:"view_type"`
	GroupID    *int64      `json:"group_id,omitempty"`
	SeriesID   *int64      `json:"series_id,omitempty"`
}

// IsCategoryBrowse reports whether the request lists groups instead of channels.
func (f Filters) IsCategoryBrowse() bool {
	return f.ViewType == ViewTypeCategories && f.GroupID == nil && f.SeriesID == nil
}
