package mirrornode

import (
	"context"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"go.uber.org/zap"
)

type Service interface {
	ListAllNfts(ctx context.Context, tokenId string, maxRequests int) ([]entity.Nft, error)
	ListAllAccountNfts(ctx context.Context, accountId string, maxRequests int) ([]entity.Nft, error)
	GetFirstNft(ctx context.Context, tokenId string) (*entity.Nft, error)
	GetAccountFirstNft(ctx context.Context, accountId string) (*entity.Nft, error)
	GetNft(ctx context.Context, tokenId string, serialNumber int64) (*entity.Nft, error)

	GetToken(ctx context.Context, tokenId string) (*entity.TokenInfo, error)
	GetAccount(ctx context.Context, id string) (*entity.Account, error)
	ListAccounts(ctx context.Context, idGt, idLt int64, limit int) ([]entity.Account, error)
	ListNftTokens(ctx context.Context, idGt, idLt int64, limit int) ([]entity.Token, error)
	GetMostRecentNftTokens(ctx context.Context, limit int) ([]entity.Token, error)
	ListTransactions(ctx context.Context, types []string, fromTimestamp string, maxRequests int, onChunk TransactionsFunc) ([]entity.Transaction, error)
}

// TransactionsFunc is called after every page with the page and everything listed so far.
type TransactionsFunc func(chunk []entity.Transaction, all []entity.Transaction)

// NftTransactionTypes are the transaction types that create, move or mint NFTs, in listing order.
var NftTransactionTypes = []string{
	entity.TransactionTokenCreation,
	entity.TransactionTokenAssociate,
	entity.TransactionTokenMint,
	entity.TransactionCryptoTransfer,
}

type service struct {
	provider *Provider
}

func NewMirrorNodeService(provider *Provider) Service {
	return service{provider}
}

func (s service) ListAllNfts(ctx context.Context, tokenId string, maxRequests int) ([]entity.Nft, error) {
	pages, err := QueryUntilEnd(ctx, func(ctx context.Context) (NftsResponse, error) {
		return s.provider.ListNfts(ctx, tokenId, defaultLimit, OrderAsc)
	}, s.provider.NextNfts, maxRequests)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("tokenId", tokenId)).Warn("Failed to list nfts")
		return nil, err
	}

	return flattenNfts(pages), nil
}

func (s service) ListAllAccountNfts(ctx context.Context, accountId string, maxRequests int) ([]entity.Nft, error) {
	pages, err := QueryUntilEnd(ctx, func(ctx context.Context) (NftsResponse, error) {
		return s.provider.ListAccountNfts(ctx, accountId, defaultLimit, OrderAsc)
	}, s.provider.NextNfts, maxRequests)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("accountId", accountId)).Warn("Failed to list account nfts")
		return nil, err
	}

	return flattenNfts(pages), nil
}

func (s service) GetFirstNft(ctx context.Context, tokenId string) (*entity.Nft, error) {
	resp, err := s.provider.ListNfts(ctx, tokenId, defaultLimit, OrderAsc)
	if err != nil {
		return nil, err
	}

	return first(resp.Nfts), nil
}

func (s service) GetAccountFirstNft(ctx context.Context, accountId string) (*entity.Nft, error) {
	resp, err := s.provider.ListAccountNfts(ctx, accountId, defaultLimit, "")
	if err != nil {
		return nil, err
	}

	return first(resp.Nfts), nil
}

func (s service) GetNft(ctx context.Context, tokenId string, serialNumber int64) (*entity.Nft, error) {
	return s.provider.GetNft(ctx, tokenId, serialNumber)
}

func (s service) GetToken(ctx context.Context, tokenId string) (*entity.TokenInfo, error) {
	return s.provider.GetToken(ctx, tokenId)
}

func (s service) GetAccount(ctx context.Context, id string) (*entity.Account, error) {
	return s.provider.GetAccount(ctx, id)
}

func (s service) ListAccounts(ctx context.Context, idGt, idLt int64, limit int) ([]entity.Account, error) {
	resp, err := s.provider.ListAccounts(ctx, idGt, idLt, limit)
	if err != nil {
		return nil, err
	}

	return resp.Accounts, nil
}

func (s service) ListNftTokens(ctx context.Context, idGt, idLt int64, limit int) ([]entity.Token, error) {
	resp, err := s.provider.ListNftTokens(ctx, idGt, idLt, limit, "")
	if err != nil {
		return nil, err
	}

	return resp.Tokens, nil
}

func (s service) GetMostRecentNftTokens(ctx context.Context, limit int) ([]entity.Token, error) {
	resp, err := s.provider.ListNftTokens(ctx, 0, 0, limit, OrderDesc)
	if err != nil {
		return nil, err
	}

	return resp.Tokens, nil
}

// ListTransactions lists every type in turn, each one paged up to maxRequests
// follow-up requests. No types means NftTransactionTypes.
func (s service) ListTransactions(ctx context.Context, types []string, fromTimestamp string, maxRequests int, onChunk TransactionsFunc) ([]entity.Transaction, error) {
	if len(types) == 0 {
		types = NftTransactionTypes
	}

	txs := make([]entity.Transaction, 0)
	for _, transactionType := range types {
		transactionType := transactionType
		err := QueryEachPage(ctx, func(ctx context.Context) (TransactionsResponse, error) {
			return s.provider.ListTransactions(ctx, transactionType, fromTimestamp, defaultLimit)
		}, s.provider.NextTransactions, maxRequests, func(page TransactionsResponse) {
			txs = append(txs, page.Transactions...)
			if onChunk != nil {
				onChunk(page.Transactions, txs[:len(txs):len(txs)])
			}
		})
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("type", transactionType)).Warn("Failed to list transactions")
			return nil, err
		}
	}

	return txs, nil
}

func flattenNfts(pages []NftsResponse) []entity.Nft {
	nfts := make([]entity.Nft, 0)
	for _, page := range pages {
		nfts = append(nfts, page.Nfts...)
	}

	return nfts
}

func first(nfts []entity.Nft) *entity.Nft {
	if len(nfts) == 0 {
		return nil
	}
	nft := nfts[0]

	return &nft
}
