package fetcher

import "github.com/voyagen/tvcatalog/internal/models"

// Entry is one playlist item: the channel row plus the headers declared by
// the #EXTVLCOPT lines preceding its URL.
type Entry struct {
	Channel models.Channel
	Headers *models.ChannelHttpHeaders
}
