package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/ZilDuck/hedera-nft-explorer/internal/mirrornode"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrTokenNotFound = errors.New("token not found")
)

// lookupTimeout bounds a shared token lookup, which outlives the caller that started it.
const lookupTimeout = 30 * time.Second

type TokenRepository interface {
	GetTokenInfo(ctx context.Context, tokenId string) (*entity.TokenInfo, error)
}

type tokenRepository struct {
	mirrorNode mirrornode.Service
	cache      *cache.Cache
	group      singleflight.Group
}

func NewTokenRepository(mirrorNode mirrornode.Service, ttl time.Duration) TokenRepository {
	return &tokenRepository{mirrorNode: mirrorNode, cache: cache.New(ttl, 2*ttl)}
}

// GetTokenInfo returns the collection level attributes of tokenId, looked up
// once per cache period however many NFTs ask for it concurrently. Cancelling
// ctx abandons the wait but not a lookup other callers share.
func (r *tokenRepository) GetTokenInfo(ctx context.Context, tokenId string) (*entity.TokenInfo, error) {
	if token, found := r.cache.Get(tokenId); found {
		return token.(*entity.TokenInfo), nil
	}

	result := r.group.DoChan(tokenId, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		token, err := r.mirrorNode.GetToken(lookupCtx, tokenId)
		if err != nil {
			return nil, err
		}
		r.cache.Set(tokenId, token, cache.DefaultExpiration)
		return token, nil
	})

	var token interface{}
	var err error
	select {
	case res := <-result:
		token, err = res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("tokenId", tokenId)).Warn("Failed to get token info")
		if errors.Is(err, mirrornode.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	return token.(*entity.TokenInfo), nil
}
