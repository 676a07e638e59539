package domain

import (
	"github.com/yungbote/dwitter-backend/internal/domain/account"
	"github.com/yungbote/dwitter-backend/internal/domain/social"
)

type Account = account.Account

type Profile = social.Profile
type Follow = social.Follow
type FollowStats = social.FollowStats
