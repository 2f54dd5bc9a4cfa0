package mirrornode

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"

	defaultLimit = 100
)

type Links struct {
	Next *string `json:"next"`
}

func (l Links) NextLink() string {
	if l.Next == nil {
		return ""
	}
	return *l.Next
}

type NftsResponse struct {
	Nfts  []entity.Nft `json:"nfts"`
	Links Links        `json:"links"`
}

func (r NftsResponse) NextLink() string { return r.Links.NextLink() }

type TokensResponse struct {
	Tokens []entity.Token `json:"tokens"`
	Links  Links          `json:"links"`
}

func (r TokensResponse) NextLink() string { return r.Links.NextLink() }

type AccountsResponse struct {
	Accounts []entity.Account `json:"accounts"`
	Links    Links            `json:"links"`
}

func (r AccountsResponse) NextLink() string { return r.Links.NextLink() }

type TransactionsResponse struct {
	Transactions []entity.Transaction `json:"transactions"`
	Links        Links                `json:"links"`
}

func (r TransactionsResponse) NextLink() string { return r.Links.NextLink() }

type Provider struct {
	client *restClient
}

func NewProvider(client *restClient) *Provider {
	return &Provider{client: client}
}

func (p *Provider) ListNfts(ctx context.Context, tokenId string, limit int, order string) (NftsResponse, error) {
	var resp NftsResponse
	err := p.client.get(ctx, "token_nfts", fmt.Sprintf("/api/v1/tokens/%s/nfts", url.PathEscape(tokenId)), listQuery(limit, order), &resp)

	return resp, err
}

func (p *Provider) ListAccountNfts(ctx context.Context, accountId string, limit int, order string) (NftsResponse, error) {
	var resp NftsResponse
	err := p.client.get(ctx, "account_nfts", fmt.Sprintf("/api/v1/accounts/%s/nfts", url.PathEscape(accountId)), listQuery(limit, order), &resp)

	return resp, err
}

func (p *Provider) NextNfts(ctx context.Context, link string) (NftsResponse, error) {
	var resp NftsResponse
	err := p.client.get(ctx, "next_nfts", link, nil, &resp)

	return resp, err
}

func (p *Provider) GetNft(ctx context.Context, tokenId string, serialNumber int64) (*entity.Nft, error) {
	var nft entity.Nft
	path := fmt.Sprintf("/api/v1/tokens/%s/nfts/%d", url.PathEscape(tokenId), serialNumber)
	if err := p.client.get(ctx, "nft", path, nil, &nft); err != nil {
		return nil, err
	}

	return &nft, nil
}

func (p *Provider) GetToken(ctx context.Context, tokenId string) (*entity.TokenInfo, error) {
	var token entity.TokenInfo
	if err := p.client.get(ctx, "token", fmt.Sprintf("/api/v1/tokens/%s", url.PathEscape(tokenId)), nil, &token); err != nil {
		return nil, err
	}

	return &token, nil
}

func (p *Provider) GetAccount(ctx context.Context, idOrAliasOrEvmAddress string) (*entity.Account, error) {
	var account entity.Account
	path := fmt.Sprintf("/api/v1/accounts/%s", url.PathEscape(idOrAliasOrEvmAddress))
	if err := p.client.get(ctx, "account", path, nil, &account); err != nil {
		return nil, err
	}

	return &account, nil
}

// ListAccounts lists accounts with 0.0.idGt <= id < 0.0.idLt. Zero bounds are ignored.
func (p *Provider) ListAccounts(ctx context.Context, idGt, idLt int64, limit int) (AccountsResponse, error) {
	query := url.Values{}
	if idGt > 0 {
		query.Add("account.id", fmt.Sprintf("gte:0.0.%d", idGt))
	}
	if idLt > 0 {
		query.Add("account.id", fmt.Sprintf("lt:0.0.%d", idLt))
	}
	if limit > 0 {
		query.Add("limit", strconv.Itoa(limit))
	}

	var resp AccountsResponse
	err := p.client.get(ctx, "accounts", "/api/v1/accounts", query, &resp)

	return resp, err
}

// ListNftTokens lists NFT collections with 0.0.idGt < id < 0.0.idLt. Zero bounds are ignored.
func (p *Provider) ListNftTokens(ctx context.Context, idGt, idLt int64, limit int, order string) (TokensResponse, error) {
	query := url.Values{}
	query.Add("type", entity.TokenTypeNonFungibleUnique)
	if idGt > 0 {
		query.Add("token.id", fmt.Sprintf("gt:0.0.%d", idGt))
	}
	if idLt > 0 {
		query.Add("token.id", fmt.Sprintf("lt:0.0.%d", idLt))
	}
	if limit > 0 {
		query.Add("limit", strconv.Itoa(limit))
	}
	if order != "" {
		query.Add("order", order)
	}

	var resp TokensResponse
	err := p.client.get(ctx, "tokens", "/api/v1/tokens", query, &resp)

	return resp, err
}

func (p *Provider) ListTransactions(ctx context.Context, transactionType, fromTimestamp string, limit int) (TransactionsResponse, error) {
	query := listQuery(limit, OrderAsc)
	if transactionType != "" {
		query.Add("transactiontype", transactionType)
	}
	if fromTimestamp != "" {
		query.Add("timestamp", "gte:"+fromTimestamp)
	}

	var resp TransactionsResponse
	err := p.client.get(ctx, "transactions", "/api/v1/transactions", query, &resp)

	return resp, err
}

func (p *Provider) NextTransactions(ctx context.Context, link string) (TransactionsResponse, error) {
	var resp TransactionsResponse
	err := p.client.get(ctx, "next_transactions", link, nil, &resp)

	return resp, err
}

func listQuery(limit int, order string) url.Values {
	query := url.Values{}
	if limit <= 0 {
		limit = defaultLimit
	}
	query.Add("limit", strconv.Itoa(limit))
	if order != "" {
		query.Add("order", order)
	}

	return query
}
