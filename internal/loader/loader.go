package loader

import (
	"context"
	"time"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/ZilDuck/hedera-nft-explorer/internal/event"
	"github.com/ZilDuck/hedera-nft-explorer/internal/metadata"
	"github.com/ZilDuck/hedera-nft-explorer/internal/metrics"
	"github.com/ZilDuck/hedera-nft-explorer/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultChunkSize = 100

// ChunkFunc is called after every chunk with the chunk itself and everything loaded so far.
type ChunkFunc func(chunk []entity.NftWithMetadata, all []entity.NftWithMetadata)

type ChunkLoaded struct {
	Chunk  []entity.NftWithMetadata
	Loaded int
	Total  int
}

type Loader interface {
	LoadMetadataForNfts(ctx context.Context, nfts []entity.Nft, onChunk ChunkFunc) ([]entity.NftWithMetadata, error)
	ListAllNftsWithMetadata(ctx context.Context, tokenId string, maxRequests int, onChunk ChunkFunc) ([]entity.NftWithMetadata, error)
	ListAllAccountNftsWithMetadata(ctx context.Context, accountId string, maxRequests int, onChunk ChunkFunc) ([]entity.NftWithMetadata, error)

	GetNft(ctx context.Context, tokenId string, serialNumber int64) (*entity.NftWithMetadata, error)
	GetFirstNft(ctx context.Context, tokenId string) (*entity.NftWithMetadata, error)
	GetAccountFirstNft(ctx context.Context, accountId string) (*entity.NftWithMetadata, error)
}

type loader struct {
	nftRepo         repository.NftRepository
	tokenRepo       repository.TokenRepository
	metadataService metadata.Service
	events          *event.Manager
	chunkSize       int
}

func NewLoader(
	nftRepo repository.NftRepository,
	tokenRepo repository.TokenRepository,
	metadataService metadata.Service,
	events *event.Manager,
	chunkSize int,
) Loader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return loader{nftRepo, tokenRepo, metadataService, events, chunkSize}
}

// LoadMetadataForNfts resolves metadata chunk by chunk. Items of a chunk are
// resolved concurrently; chunks run one after another. A metadata failure is
// kept on its item, a token info failure aborts the load.
func (l loader) LoadMetadataForNfts(ctx context.Context, nfts []entity.Nft, onChunk ChunkFunc) ([]entity.NftWithMetadata, error) {
	all := make([]entity.NftWithMetadata, 0, len(nfts))

	for start := 0; start < len(nfts); start += l.chunkSize {
		end := start + l.chunkSize
		if end > len(nfts) {
			end = len(nfts)
		}

		chunk, err := l.loadChunk(ctx, nfts[start:end])
		if err != nil {
			return nil, err
		}
		all = append(all, chunk...)

		zap.L().With(zap.Int("chunk", len(chunk)), zap.Int("loaded", len(all)), zap.Int("total", len(nfts))).Debug("Metadata chunk loaded")
		if l.events != nil {
			l.events.EmitEvent(event.MetadataChunkLoadedEvent, ChunkLoaded{Chunk: chunk, Loaded: len(all), Total: len(nfts)})
		}
		if onChunk != nil {
			onChunk(chunk, all[:len(all):len(all)])
		}
	}

	return all, nil
}

func (l loader) loadChunk(ctx context.Context, nfts []entity.Nft) ([]entity.NftWithMetadata, error) {
	start := time.Now()
	defer func() {
		metrics.LoaderChunks.Inc()
		metrics.LoaderChunkLatency.Observe(time.Since(start).Seconds())
	}()

	chunk := make([]entity.NftWithMetadata, len(nfts))
	g, gctx := errgroup.WithContext(ctx)
	for idx := range nfts {
		idx := idx
		g.Go(func() error {
			item, err := l.load(gctx, nfts[idx])
			if err != nil {
				return err
			}
			chunk[idx] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return chunk, nil
}

func (l loader) load(ctx context.Context, nft entity.Nft) (entity.NftWithMetadata, error) {
	tokenInfo, err := l.tokenRepo.GetTokenInfo(ctx, nft.TokenId)
	if err != nil {
		return entity.NftWithMetadata{}, err
	}

	item := entity.NewNftWithMetadata(nft, tokenInfo)
	md, err := l.metadataService.GetMetadata(ctx, nft)
	if err != nil {
		item.SetError(err)
		if l.events != nil {
			l.events.EmitEvent(event.MetadataFailedEvent, item)
		}
		return item, nil
	}

	item.MetadataObj = md
	item.ImageUrl = l.metadataService.ImageUrl(md)

	return item, nil
}

func (l loader) ListAllNftsWithMetadata(ctx context.Context, tokenId string, maxRequests int, onChunk ChunkFunc) ([]entity.NftWithMetadata, error) {
	nfts, err := l.nftRepo.GetNfts(ctx, tokenId, maxRequests)
	if err != nil {
		return nil, err
	}
	zap.L().With(zap.String("tokenId", tokenId), zap.Int("nfts", len(nfts))).Info("Loading collection metadata")

	return l.LoadMetadataForNfts(ctx, nfts, onChunk)
}

func (l loader) ListAllAccountNftsWithMetadata(ctx context.Context, accountId string, maxRequests int, onChunk ChunkFunc) ([]entity.NftWithMetadata, error) {
	nfts, err := l.nftRepo.GetAccountNfts(ctx, accountId, maxRequests)
	if err != nil {
		return nil, err
	}
	zap.L().With(zap.String("accountId", accountId), zap.Int("nfts", len(nfts))).Info("Loading account metadata")

	return l.LoadMetadataForNfts(ctx, nfts, onChunk)
}

func (l loader) GetNft(ctx context.Context, tokenId string, serialNumber int64) (*entity.NftWithMetadata, error) {
	nft, err := l.nftRepo.GetNft(ctx, tokenId, serialNumber)
	if err != nil {
		return nil, err
	}

	item, err := l.load(ctx, *nft)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (l loader) GetFirstNft(ctx context.Context, tokenId string) (*entity.NftWithMetadata, error) {
	nft, err := l.nftRepo.GetFirstNft(ctx, tokenId)
	if err != nil || nft == nil {
		return nil, err
	}

	return l.first(ctx, *nft)
}

func (l loader) GetAccountFirstNft(ctx context.Context, accountId string) (*entity.NftWithMetadata, error) {
	nft, err := l.nftRepo.GetAccountFirstNft(ctx, accountId)
	if err != nil || nft == nil {
		return nil, err
	}

	return l.first(ctx, *nft)
}

// first is a preview: a metadata failure leaves the metadata empty rather than reporting an error.
func (l loader) first(ctx context.Context, nft entity.Nft) (*entity.NftWithMetadata, error) {
	item, err := l.load(ctx, nft)
	if err != nil {
		return nil, err
	}
	item.Err = nil
	item.MetadataError = ""

	return &item, nil
}
