package models

// SourceType identifies where a source's channels come from.
type SourceType int16

// Source type constants.
const (
	SourceTypeM3U     SourceType = 0
	SourceTypeM3ULink SourceType = 1
	SourceTypeXtream  SourceType = 2
	SourceTypeCustom  SourceType = 3
)

// MediaType is the kind of a channel row.
type MediaType int16

// Media type constants. MediaTypeGroup is never stored: it marks category
// rows synthesized by the group browse query. Series episodes are stored
// with MediaTypeMovie and a non-nil SeriesID.
const (
	MediaTypeLivestream MediaType = 0
	MediaTypeMovie      MediaType = 1
	MediaTypeSerie      MediaType = 2
	MediaTypeGroup      MediaType = 3
)

// ViewType is the browse mode requested by the UI.
type ViewType int16

// View type constants.
const (
	ViewTypeAll        ViewType = 0
	ViewTypeFavorites  ViewType = 1
	ViewTypeCategories ViewType = 2
)

// Recognized settings keys.
const (
	SettingUseStreamCaching = "useStreamCaching"
	SettingRecordingPath    = "recordingPath"
	SettingVolume           = "volume"
	SettingMpvParams        = "mpvParams"
)
