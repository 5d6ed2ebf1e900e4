package models

// Channel is a playable entry (livestream, movie, series or episode). Rows
// returned by the category browse carry MediaTypeGroup and a nil URL.
type Channel struct {
	ID        int64     `json:"id,omitempty"`
	Name      string    `json:"name"`
	URL       *string   `json:"url,omitempty"`
	Group     *string   `json:"group,omitempty"` // group title seen during import, not stored
	Image     *string   `json:"image,omitempty"`
	MediaType MediaType `json:"media_type"`
	SourceID  int64     `json:"source_id,omitempty"`
	GroupID   *int64    `json:"group_id,omitempty"`
	SeriesID  *int64    `json:"series_id,omitempty"`
	Favorite  bool      `json:"favorite"`
}

// CustomChannel is a user-defined channel together with its optional headers.
type CustomChannel struct {
	Data    Channel             `json:"data"`
	Headers *ChannelHttpHeaders `json:"headers,omitempty"`
}

// CustomChannelExtraData is what the edit dialog needs besides the channel row.
type CustomChannelExtraData struct {
	Headers *ChannelHttpHeaders `json:"headers,omitempty"`
	Group   *Group              `json:"group,omitempty"`
}

// IDName is a light projection used for autocompletion.
type IDName struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
