package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/dwitter-backend/internal/observability"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
	"github.com/yungbote/dwitter-backend/internal/realtime/bus"
	"github.com/yungbote/dwitter-backend/internal/services"
)

type Services struct {
	Lifecycle services.ProfileLifecycle
	Accounts  services.AccountService
	Follows   services.FollowService
	Notifier  services.SocialNotifier
}

func wireServices(db *gorm.DB, log *logger.Logger, r Repos, b bus.Bus, cache services.FollowStatsCache, metrics *observability.Metrics) Services {
	log.Debug("Wiring services...")
	notifier := services.NewSocialNotifier(b, log)
	guarded := services.GuardStatsCache(cache)
	lifecycle := services.NewProfileLifecycle(db, log, r.Profile, r.Follow)
	return Services{
		Lifecycle: lifecycle,
		Notifier:  notifier,
		Accounts: services.NewAccountService(db, log, services.AccountServiceDeps{
			AccountRepo: r.Account,
			ProfileRepo: r.Profile,
			FollowRepo:  r.Follow,
			Lifecycle:   lifecycle,
			Notifier:    notifier,
			StatsCache:  guarded,
			Metrics:     metrics,
		}),
		Follows: services.NewFollowService(db, log, services.FollowServiceDeps{
			ProfileRepo: r.Profile,
			FollowRepo:  r.Follow,
			Notifier:    notifier,
			StatsCache:  guarded,
			Metrics:     metrics,
		}),
	}
}
