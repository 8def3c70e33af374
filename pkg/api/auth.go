package api

import (
	"context"
	"crypto/subtle"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/errors"
)

const (
	botCacheTTL     = 30 * time.Second
	botCacheCleanup = 5 * time.Minute
)

// BotAuthenticator resolves bot credentials against bot_config. Lookups are
// cached briefly so a busy bot does not hit the database on every request;
// disabling a bot therefore takes up to botCacheTTL to bite.
type BotAuthenticator struct {
	bots  database.BotFacadeInterface
	cache *gocache.Cache
}

func NewBotAuthenticator(bots database.BotFacadeInterface) *BotAuthenticator {
	return &BotAuthenticator{
		bots:  bots,
		cache: gocache.New(botCacheTTL, botCacheCleanup),
	}
}

// Authenticate verifies the credential pair and returns the bot config.
// Unknown bots and wrong tokens are indistinguishable to the caller.
func (a *BotAuthenticator) Authenticate(ctx context.Context, botID, apiToken string) (*model.BotConfig, error) {
	if botID == "" || apiToken == "" {
		return nil, errors.NewError().
			WithCode(errors.AuthFailed).
			WithMessage("bot_id and api_token are required")
	}

	bot, err := a.lookup(ctx, botID)
	if err != nil {
		return nil, err
	}
	if bot == nil || subtle.ConstantTimeCompare([]byte(bot.APIToken), []byte(apiToken)) != 1 {
		return nil, errors.NewError().
			WithCode(errors.AuthFailed).
			WithMessage("invalid bot credentials")
	}
	if !bot.Enabled {
		return nil, errors.NewError().
			WithCode(errors.PermissionDeny).
			WithMessagef("bot %s is disabled", botID)
	}
	return bot, nil
}

func (a *BotAuthenticator) lookup(ctx context.Context, botID string) (*model.BotConfig, error) {
	if cached, ok := a.cache.Get(botID); ok {
		return cached.(*model.BotConfig), nil
	}
	bot, err := a.bots.GetBotByID(ctx, botID)
	if err != nil {
		return nil, errors.NewError().
			WithCode(errors.InternalError).
			WithMessage("failed to load bot config").
			WithError(err)
	}
	if bot != nil {
		a.cache.Set(botID, bot, gocache.DefaultExpiration)
	}
	return bot, nil
}
