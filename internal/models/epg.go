package models

// EPGNotify is a program reminder: a notification fires when StartTimestamp
// (unix seconds) is reached.
type EPGNotify struct {
	EPGID          string `json:"epg_id"`
	Title          string `json:"title"`
	ChannelName    string `json:"channel_name"`
	StartTimestamp int64  `json:"start_timestamp"`
}
