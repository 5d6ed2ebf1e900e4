package store

import (
	"context"
	"time"

	"github.com/voyagen/tvcatalog/internal/models"
)

// Store defines persistence for sources, channels, groups, channel headers,
// settings and EPG reminders.
type Store interface {
	// DoTx runs fn in one transaction; import batches and multi-table writes go through it.
	DoTx(ctx context.Context, fn func(*Tx) error) error
	// CreateOrFindSource returns the id of the source named src.Name, inserting it if needed.
	CreateOrFindSource(ctx context.Context, src *models.Source) (int64, error)

	// Search returns a page of channels, or of categories when f selects the category browse.
	Search(ctx context.Context, f models.Filters) ([]models.Channel, error)

	// GetSources returns all sources.
	GetSources(ctx context.Context) ([]models.Source, error)
	// GetEnabledSources returns sources with the enabled flag set.
	GetEnabledSources(ctx context.Context) ([]models.Source, error)
	// GetSourceByID returns a single source by id.
	GetSourceByID(ctx context.Context, sourceID int64) (*models.Source, error)
	// GetSourceFromSeriesID returns the source owning the series row with that id.
	GetSourceFromSeriesID(ctx context.Context, seriesID int64) (*models.Source, error)
	// SourceNameExists reports whether a source already uses name.
	SourceNameExists(ctx context.Context, name string) (bool, error)
	// SetSourceEnabled toggles a source.
	SetSourceEnabled(ctx context.Context, sourceID int64, enabled bool) error
	// UpdateSource updates mutable fields of a source.
	UpdateSource(ctx context.Context, sourceID int64, fields SourceUpdate) error
	// UpdateSourceLastUpdated sets last_updated for the source.
	UpdateSourceLastUpdated(ctx context.Context, sourceID int64) error
	// GetChannelCountBySource counts the channels of a source.
	GetChannelCountBySource(ctx context.Context, sourceID int64) (int64, error)
	// WipeSourceChannels removes non-favorite channels and unreferenced groups of a source.
	WipeSourceChannels(ctx context.Context, sourceID int64) error
	// DeleteSource deletes a source with its channels and groups.
	DeleteSource(ctx context.Context, sourceID int64) error

	// GetChannelByID returns a single channel by id.
	GetChannelByID(ctx context.Context, channelID int64) (*models.Channel, error)
	// FavoriteChannel sets the favorite flag on a channel.
	FavoriteChannel(ctx context.Context, channelID int64, favorite bool) error
	// ChannelExists reports whether the (name, url, source) triple is taken.
	ChannelExists(ctx context.Context, name, url string, sourceID int64) (bool, error)
	// SeriesHasEpisodes reports whether any episode points at seriesID.
	SeriesHasEpisodes(ctx context.Context, seriesID int64) (bool, error)
	// GetChannelHeadersByID returns the headers of a channel, nil when it has none.
	GetChannelHeadersByID(ctx context.Context, channelID int64) (*models.ChannelHttpHeaders, error)

	// AddCustomChannel inserts a custom channel and its headers.
	AddCustomChannel(ctx context.Context, ch models.CustomChannel) (int64, error)
	// EditCustomChannel updates a custom channel and replaces its headers.
	EditCustomChannel(ctx context.Context, ch models.CustomChannel) error
	// DeleteCustomChannel deletes a channel and its headers.
	DeleteCustomChannel(ctx context.Context, channelID int64) error
	// GetCustomChannels lists channels of a source in groupID, or ungrouped ones when nil.
	GetCustomChannels(ctx context.Context, groupID *int64, sourceID int64) ([]models.CustomChannel, error)
	// GetCustomChannelExtraData returns headers and group of a channel for editing.
	GetCustomChannelExtraData(ctx context.Context, channelID int64, groupID *int64) (*models.CustomChannelExtraData, error)

	// AddCustomGroup inserts a group and returns its id.
	AddCustomGroup(ctx context.Context, g models.Group) (int64, error)
	// EditCustomGroup renames a group or changes its image.
	EditCustomGroup(ctx context.Context, g models.Group) error
	// DeleteCustomGroup deletes a group; when reassign is set its channels move to newGroupID (nil = ungrouped),
	// otherwise they are left ungrouped.
	DeleteCustomGroup(ctx context.Context, groupID int64, newGroupID *int64, reassign bool) error
	// GetGroupByID returns a single group by id.
	GetGroupByID(ctx context.Context, groupID int64) (*models.Group, error)
	// GroupExists reports whether a source already has a group named name.
	GroupExists(ctx context.Context, name string, sourceID int64) (bool, error)
	// GroupNotEmpty reports whether any channel belongs to the group.
	GroupNotEmpty(ctx context.Context, groupID int64) (bool, error)
	// GroupAutoComplete lists groups of a source whose name contains query.
	GroupAutoComplete(ctx context.Context, query *string, sourceID int64) ([]models.IDName, error)
	// GetCustomGroups exports the groups of a source with their channels.
	GetCustomGroups(ctx context.Context, sourceID int64) ([]models.ExportedGroup, error)

	// GetSettings returns every stored setting.
	GetSettings(ctx context.Context) (map[string]string, error)
	// UpdateSettings merges values into the stored settings.
	UpdateSettings(ctx context.Context, values map[string]string) error

	// AddEPG stores a program reminder and returns its id.
	AddEPG(ctx context.Context, epg models.EPGNotify) (string, error)
	// RemoveEPG deletes a program reminder.
	RemoveEPG(ctx context.Context, epgID string) error
	// GetEPGs lists reminders by start time.
	GetEPGs(ctx context.Context) ([]models.EPGNotify, error)
	// CleanEPGs deletes reminders that started before now.
	CleanEPGs(ctx context.Context, now time.Time) (int64, error)

	// DeleteDatabase closes the store and removes its file.
	DeleteDatabase(ctx context.Context) error
	// Close releases the store's connections.
	Close() error
}

// SourceUpdate holds mutable fields of a source.
// Pointer fields: nil = don't change, non-nil = set.
type SourceUpdate struct {
	Name     *string
	URL      *string
	Username *string
	Password *string
	Enabled  *bool
	UseTvgID *bool
}

// GroupCache maps group names to ids for one import batch so each group is
// looked up or created once. It is not safe for concurrent use and must not
// outlive the batch.
type GroupCache struct {
	ids map[string]int64
}

// NewGroupCache returns an empty cache.
func NewGroupCache() *GroupCache {
	return &GroupCache{ids: make(map[string]int64)}
}

// Get returns the cached id for name.
func (c *GroupCache) Get(name string) (int64, bool) {
	id, ok := c.ids[name]
	return id, ok
}

// Put records the id of name.
func (c *GroupCache) Put(name string, id int64) {
	c.ids[name] = id
}

// Len returns the number of cached groups.
func (c *GroupCache) Len() int {
	return len(c.ids)
}
