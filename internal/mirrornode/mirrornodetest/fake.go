// Package mirrornodetest provides an in-memory mirror node for tests.
package mirrornodetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/ZilDuck/hedera-nft-explorer/internal/mirrornode"
)

type Fake struct {
	mu sync.Mutex

	Nfts        map[string][]entity.Nft
	AccountNfts map[string][]entity.Nft
	Tokens      map[string]*entity.TokenInfo
	Accounts    map[string]*entity.Account
	Recent      []entity.Token

	// ListErr is returned by every listing call when set.
	ListErr error
	// BeforeList runs before a listing returns, e.g. to block until released.
	BeforeList func(ctx context.Context, id string)
	// BeforeToken runs before a token lookup returns.
	BeforeToken func(ctx context.Context, tokenId string)

	tokenCalls map[string]int
	listCaps   []int
}

var _ mirrornode.Service = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		Nfts:        make(map[string][]entity.Nft),
		AccountNfts: make(map[string][]entity.Nft),
		Tokens:      make(map[string]*entity.TokenInfo),
		Accounts:    make(map[string]*entity.Account),
		tokenCalls:  make(map[string]int),
	}
}

func (f *Fake) TokenCalls(tokenId string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenCalls[tokenId]
}

// ListCaps returns the maxRequests of every full listing, in call order.
func (f *Fake) ListCaps() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int{}, f.listCaps...)
}

func (f *Fake) recordCap(maxRequests int) {
	f.mu.Lock()
	f.listCaps = append(f.listCaps, maxRequests)
	f.mu.Unlock()
}

func (f *Fake) list(ctx context.Context, id string, source map[string][]entity.Nft) ([]entity.Nft, error) {
	if f.BeforeList != nil {
		f.BeforeList(ctx, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	return append([]entity.Nft{}, source[id]...), nil
}

func (f *Fake) ListAllNfts(ctx context.Context, tokenId string, maxRequests int) ([]entity.Nft, error) {
	f.recordCap(maxRequests)
	return f.list(ctx, tokenId, f.Nfts)
}

func (f *Fake) ListAllAccountNfts(ctx context.Context, accountId string, maxRequests int) ([]entity.Nft, error) {
	f.recordCap(maxRequests)
	return f.list(ctx, accountId, f.AccountNfts)
}

func (f *Fake) GetFirstNft(ctx context.Context, tokenId string) (*entity.Nft, error) {
	nfts, err := f.list(ctx, tokenId, f.Nfts)
	if err != nil || len(nfts) == 0 {
		return nil, err
	}
	return &nfts[0], nil
}

func (f *Fake) GetAccountFirstNft(ctx context.Context, accountId string) (*entity.Nft, error) {
	nfts, err := f.list(ctx, accountId, f.AccountNfts)
	if err != nil || len(nfts) == 0 {
		return nil, err
	}
	return &nfts[0], nil
}

func (f *Fake) GetNft(ctx context.Context, tokenId string, serialNumber int64) (*entity.Nft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, nft := range f.Nfts[tokenId] {
		if nft.SerialNumber == serialNumber {
			n := nft
			return &n, nil
		}
	}

	return nil, notFound(fmt.Sprintf("/api/v1/tokens/%s/nfts/%d", tokenId, serialNumber))
}

func (f *Fake) GetToken(ctx context.Context, tokenId string) (*entity.TokenInfo, error) {
	if f.BeforeToken != nil {
		f.BeforeToken(ctx, tokenId)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenCalls[tokenId]++
	if token, ok := f.Tokens[tokenId]; ok {
		return token, nil
	}

	return nil, notFound("/api/v1/tokens/" + tokenId)
}

func (f *Fake) GetAccount(ctx context.Context, id string) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.Accounts[id]; ok {
		return account, nil
	}

	return nil, notFound("/api/v1/accounts/" + id)
}

func (f *Fake) ListAccounts(ctx context.Context, idGt, idLt int64, limit int) ([]entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	accounts := make([]entity.Account, 0, len(f.Accounts))
	for _, account := range f.Accounts {
		accounts = append(accounts, *account)
	}
	return accounts, nil
}

func (f *Fake) ListNftTokens(ctx context.Context, idGt, idLt int64, limit int) ([]entity.Token, error) {
	return f.GetMostRecentNftTokens(ctx, limit)
}

func (f *Fake) GetMostRecentNftTokens(ctx context.Context, limit int) ([]entity.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > 0 && limit < len(f.Recent) {
		return append([]entity.Token{}, f.Recent[:limit]...), nil
	}
	return append([]entity.Token{}, f.Recent...), nil
}

func (f *Fake) ListTransactions(ctx context.Context, types []string, fromTimestamp string, maxRequests int, onChunk mirrornode.TransactionsFunc) ([]entity.Transaction, error) {
	return []entity.Transaction{}, nil
}

func notFound(url string) error {
	return mirrornode.HttpError{Url: url, StatusCode: 404, Status: "404 Not Found"}
}

// Collection builds count NFTs of tokenId with serial numbers from 1, each
// owned by owner and carrying pointer as metadata.
func Collection(tokenId, owner, pointer string, count int) []entity.Nft {
	nfts := make([]entity.Nft, 0, count)
	for i := 1; i <= count; i++ {
		nfts = append(nfts, entity.Nft{TokenId: tokenId, SerialNumber: int64(i), AccountId: owner, Metadata: pointer})
	}
	return nfts
}
