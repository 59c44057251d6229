package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// NotificationSender defines the interface for sending notifications to Discord channels.
type NotificationSender interface {
	// SendNowPlaying sends a "Now playing" embed to the channel.
	SendNowPlaying(channelID snowflake.ID, info *NowPlayingInfo) error

	// SendPlaybackFailed sends a "Cannot play" embed to the channel.
	SendPlaybackFailed(channelID snowflake.ID, info *NowPlayingInfo) error

	// SendQueueFinished sends a "Queue finished" embed to the channel.
	SendQueueFinished(channelID snowflake.ID) error
}
