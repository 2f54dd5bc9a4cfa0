package repository

import (
	"context"
	"errors"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/ZilDuck/hedera-nft-explorer/internal/mirrornode"
)

var (
	ErrNftNotFound = errors.New("nft not found")
)

type NftRepository interface {
	GetNft(ctx context.Context, tokenId string, serialNumber int64) (*entity.Nft, error)
	GetNfts(ctx context.Context, tokenId string, maxRequests int) ([]entity.Nft, error)
	GetAccountNfts(ctx context.Context, accountId string, maxRequests int) ([]entity.Nft, error)
	GetFirstNft(ctx context.Context, tokenId string) (*entity.Nft, error)
	GetAccountFirstNft(ctx context.Context, accountId string) (*entity.Nft, error)
}

type nftRepository struct {
	mirrorNode mirrornode.Service
}

func NewNftRepository(mirrorNode mirrornode.Service) NftRepository {
	return nftRepository{mirrorNode}
}

func (r nftRepository) GetNft(ctx context.Context, tokenId string, serialNumber int64) (*entity.Nft, error) {
	nft, err := r.mirrorNode.GetNft(ctx, tokenId, serialNumber)
	if errors.Is(err, mirrornode.ErrNotFound) {
		return nil, ErrNftNotFound
	}

	return nft, err
}

func (r nftRepository) GetNfts(ctx context.Context, tokenId string, maxRequests int) ([]entity.Nft, error) {
	return r.mirrorNode.ListAllNfts(ctx, tokenId, maxRequests)
}

func (r nftRepository) GetAccountNfts(ctx context.Context, accountId string, maxRequests int) ([]entity.Nft, error) {
	return r.mirrorNode.ListAllAccountNfts(ctx, accountId, maxRequests)
}

func (r nftRepository) GetFirstNft(ctx context.Context, tokenId string) (*entity.Nft, error) {
	return r.mirrorNode.GetFirstNft(ctx, tokenId)
}

func (r nftRepository) GetAccountFirstNft(ctx context.Context, accountId string) (*entity.Nft, error) {
	return r.mirrorNode.GetAccountFirstNft(ctx, accountId)
}
