package mirrornode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.Handler) Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, ClientOptions{Timeout: 5})
	require.NoError(t, err)

	return NewMirrorNodeService(NewProvider(client))
}

func writeJson(t *testing.T, w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func nftPage(tokenId string, from, count int, next string) map[string]interface{} {
	nfts := make([]map[string]interface{}, 0, count)
	for i := from; i < from+count; i++ {
		nfts = append(nfts, map[string]interface{}{
			"token_id":      tokenId,
			"serial_number": i,
			"account_id":    "0.0.42",
			"metadata":      "aXBmczovL1FtWXdBUEp6djVDWnNuQTYyNXMzWGYybmVtdFlnUHBIZFdFejc5b2pXblBiZEc=",
			"spender":       nil,
		})
	}
	var nextLink interface{}
	if next != "" {
		nextLink = next
	}

	return map[string]interface{}{"nfts": nfts, "links": map[string]interface{}{"next": nextLink}}
}

func TestService_ListAllNfts_FollowsNextLinks(t *testing.T) {
	var requests int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "/api/v1/tokens/0.0.1234/nfts", r.URL.Path)
		switch r.URL.Query().Get("serialnumber") {
		case "":
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			assert.Equal(t, "asc", r.URL.Query().Get("order"))
			writeJson(t, w, nftPage("0.0.1234", 1, 2, "/api/v1/tokens/0.0.1234/nfts?limit=100&order=asc&serialnumber=gt:2"))
		case "gt:2":
			writeJson(t, w, nftPage("0.0.1234", 3, 2, "/api/v1/tokens/0.0.1234/nfts?limit=100&order=asc&serialnumber=gt:4"))
		case "gt:4":
			writeJson(t, w, nftPage("0.0.1234", 5, 1, ""))
		}
	}))

	nfts, err := svc.ListAllNfts(context.Background(), "0.0.1234", NoLimit)
	require.NoError(t, err)

	require.Len(t, nfts, 5)
	for i, nft := range nfts {
		assert.Equal(t, int64(i+1), nft.SerialNumber)
		assert.Equal(t, "0.0.42", nft.AccountId)
		assert.False(t, nft.IsListed())
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestService_ListAllAccountNfts_RespectsMaxRequests(t *testing.T) {
	var requests int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&requests, 1)
		assert.Equal(t, "/api/v1/accounts/0.0.42/nfts", r.URL.Path)
		writeJson(t, w, nftPage("0.0.1", int(n)*10, 1, fmt.Sprintf("/api/v1/accounts/0.0.42/nfts?page=%d", n+1)))
	}))

	nfts, err := svc.ListAllAccountNfts(context.Background(), "0.0.42", 2)
	require.NoError(t, err)
	assert.Len(t, nfts, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestService_NonOkIsAnError(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/v1/tokens/0.0.404") {
			http.Error(w, `{"_status":{"messages":[{"message":"Not found"}]}}`, http.StatusNotFound)
			return
		}
		http.Error(w, "bad request", http.StatusBadRequest)
	}))

	_, err := svc.GetToken(context.Background(), "0.0.404")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ListAllNfts(context.Background(), "0.0.1", NoLimit)
	var httpErr HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestService_GetToken(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tokens/0.0.1234", r.URL.Path)
		writeJson(t, w, map[string]interface{}{
			"token_id":     "0.0.1234",
			"name":         "Hash Boos",
			"symbol":       "BOO",
			"type":         "NON_FUNGIBLE_UNIQUE",
			"total_supply": "500",
			"supply_key":   map[string]string{"_type": "ED25519", "key": "abcd"},
			"admin_key":    nil,
		})
	}))

	token, err := svc.GetToken(context.Background(), "0.0.1234")
	require.NoError(t, err)
	assert.Equal(t, "Hash Boos", token.Name)
	assert.Equal(t, "500", token.TotalSupply)
	assert.True(t, token.IsNft())
	require.NotNil(t, token.SupplyKey)
	assert.Equal(t, "ED25519", token.SupplyKey.Type)
	assert.Nil(t, token.AdminKey)
}

func TestService_GetFirstNft(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/tokens/0.0.7/nfts" {
			writeJson(t, w, nftPage("0.0.7", 0, 0, ""))
			return
		}
		writeJson(t, w, nftPage("0.0.1234", 9, 3, "/next"))
	}))

	nft, err := svc.GetFirstNft(context.Background(), "0.0.1234")
	require.NoError(t, err)
	require.NotNil(t, nft)
	assert.Equal(t, int64(9), nft.SerialNumber)

	nft, err = svc.GetFirstNft(context.Background(), "0.0.7")
	require.NoError(t, err)
	assert.Nil(t, nft)
}

func TestService_ListingQueries(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/tokens":
			assert.Equal(t, entity.TokenTypeNonFungibleUnique, r.URL.Query().Get("type"))
			assert.Equal(t, "desc", r.URL.Query().Get("order"))
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			writeJson(t, w, map[string]interface{}{"tokens": []map[string]interface{}{{"token_id": "0.0.9", "symbol": "X", "type": "NON_FUNGIBLE_UNIQUE"}}})
		case "/api/v1/accounts":
			assert.Equal(t, []string{"gte:0.0.10", "lt:0.0.20"}, r.URL.Query()["account.id"])
			writeJson(t, w, map[string]interface{}{"accounts": []map[string]interface{}{{"account": "0.0.11"}}})
		case "/api/v1/transactions":
			assert.Equal(t, entity.TransactionTokenMint, r.URL.Query().Get("transactiontype"))
			assert.Equal(t, "gte:1654736400", r.URL.Query().Get("timestamp"))
			writeJson(t, w, map[string]interface{}{"transactions": []map[string]interface{}{{"transaction_id": "0.0.1-1-1", "name": "TOKENMINT"}}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	tokens, err := svc.GetMostRecentNftTokens(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "0.0.9", tokens[0].TokenId)

	accounts, err := svc.ListAccounts(context.Background(), 10, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, "0.0.11", accounts[0].Account)

	txs, err := svc.ListTransactions(context.Background(), []string{entity.TransactionTokenMint}, "1654736400", NoLimit, nil)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "TOKENMINT", txs[0].Name)
}

func TestService_ListTransactionsWalksTypesInOrder(t *testing.T) {
	var requested []string
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		txType := r.URL.Query().Get("transactiontype")
		if r.URL.Query().Get("page") == "2" {
			writeJson(t, w, map[string]interface{}{"transactions": []map[string]interface{}{{"transaction_id": txType + "-2", "name": txType}}})
			return
		}
		requested = append(requested, txType)
		next := ""
		if txType == entity.TransactionTokenMint {
			next = "/api/v1/transactions?transactiontype=" + txType + "&page=2"
		}
		writeJson(t, w, map[string]interface{}{
			"transactions": []map[string]interface{}{{"transaction_id": txType + "-1", "name": txType}},
			"links":        map[string]interface{}{"next": next},
		})
	}))

	chunks := make([]int, 0)
	txs, err := svc.ListTransactions(context.Background(), nil, "", NoLimit, func(chunk, all []entity.Transaction) {
		require.Len(t, chunk, 1)
		chunks = append(chunks, len(all))
	})
	require.NoError(t, err)

	assert.Equal(t, NftTransactionTypes, requested)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, chunks, "one callback per page with the running total")

	names := make([]string, 0, len(txs))
	for _, tx := range txs {
		names = append(names, tx.TransactionId)
	}
	assert.Equal(t, []string{
		"TOKENCREATION-1",
		"TOKENASSOCIATE-1",
		"TOKENMINT-1",
		"TOKENMINT-2",
		"CRYPTOTRANSFER-1",
	}, names)
}

func TestClient_Resolve(t *testing.T) {
	c, err := NewClient("https://mirror.example/", ClientOptions{})
	require.NoError(t, err)

	assert.Equal(t, "https://mirror.example/api/v1/tokens?limit=1", c.resolve("/api/v1/tokens", map[string][]string{"limit": {"1"}}))
	assert.Equal(t, "https://mirror.example/api/v1/tokens?limit=100&x=1", c.resolve("/api/v1/tokens?limit=100", map[string][]string{"x": {"1"}}))
	assert.Equal(t, "https://other.example/next", c.resolve("https://other.example/next", nil))

	_, err = NewClient("", ClientOptions{})
	assert.Error(t, err)
}
