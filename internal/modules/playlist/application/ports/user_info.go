package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// UserInfo is the display identity of a requester.
type UserInfo struct {
	DisplayName string
	AvatarURL   string
}

// UserInfoProvider resolves guild members to display identities.
type UserInfoProvider interface {
	GetUserInfo(guildID, userID snowflake.ID) (*UserInfo, error)
}
