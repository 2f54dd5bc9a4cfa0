package nameservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/ZilDuck/hedera-nft-explorer/internal/log"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var (
	ErrDomainNotFound  = errors.New("domain not found")
	ErrInvalidDomain   = errors.New("invalid domain")
	ErrResolverMissing = errors.New("name service url is not configured")
)

type Resolver interface {
	// ResolveSLD returns the account owning domain.
	ResolveSLD(ctx context.Context, domain string) (string, error)
	GetAllDomainsForAccount(ctx context.Context, accountId string) ([]string, error)
}

type domainResponse struct {
	Domain    string `json:"domain"`
	AccountId string `json:"account_id"`
}

type domainsResponse struct {
	Domains []domainResponse `json:"domains"`
}

type httpResolver struct {
	baseUrl string
	client  *retryablehttp.Client
	timeout time.Duration
	cache   *cache.Cache
}

func NewResolver(baseUrl string, timeout, ttl time.Duration) Resolver {
	client := retryablehttp.NewClient()
	client.Logger = log.RetryableLogger{Component: "nameservice"}
	client.RetryMax = 2

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return httpResolver{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		client:  client,
		timeout: timeout,
		cache:   cache.New(ttl, 2*ttl),
	}
}

// IsDomain reports whether value looks like a second level domain, e.g. "name.hbar".
func IsDomain(value string) bool {
	labels := strings.Split(value, ".")
	if len(labels) != 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
	}

	_, err := strconv.Atoi(labels[1])
	return err != nil
}

func (r httpResolver) ResolveSLD(ctx context.Context, domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if !IsDomain(domain) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
	}

	key := "sld:" + domain
	if accountId, found := r.cache.Get(key); found {
		return accountId.(string), nil
	}

	var resp domainResponse
	if err := r.get(ctx, "/domains/"+url.PathEscape(domain), &resp); err != nil {
		return "", err
	}
	if resp.AccountId == "" {
		return "", ErrDomainNotFound
	}
	r.cache.Set(key, resp.AccountId, cache.DefaultExpiration)

	return resp.AccountId, nil
}

func (r httpResolver) GetAllDomainsForAccount(ctx context.Context, accountId string) ([]string, error) {
	key := "account:" + accountId
	if domains, found := r.cache.Get(key); found {
		return domains.([]string), nil
	}

	var resp domainsResponse
	err := r.get(ctx, "/accounts/"+url.PathEscape(accountId)+"/domains", &resp)
	if errors.Is(err, ErrDomainNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	domains := make([]string, 0, len(resp.Domains))
	for _, d := range resp.Domains {
		domains = append(domains, d.Domain)
	}
	r.cache.Set(key, domains, cache.DefaultExpiration)

	return domains, nil
}

func (r httpResolver) get(ctx context.Context, path string, out interface{}) error {
	if r.baseUrl == "" {
		return ErrResolverMissing
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	uri := r.baseUrl + path
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return err
	}
	req.Header.Add("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("url", uri)).Warn("NameService: Request failure")
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrDomainNotFound
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("name service: %s: %s", uri, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("name service: decode %s: %w", uri, err)
	}

	return nil
}

// GroupByTld sorts domains and groups them by their top level domain.
func GroupByTld(domains []string) []entity.DomainGroup {
	sorted := append([]string{}, domains...)
	sort.Strings(sorted)

	groups := make([]entity.DomainGroup, 0)
	index := make(map[string]int)
	for _, domain := range sorted {
		tld := domain
		if idx := strings.LastIndex(domain, "."); idx >= 0 {
			tld = domain[idx+1:]
		}
		i, ok := index[tld]
		if !ok {
			i = len(groups)
			index[tld] = i
			groups = append(groups, entity.DomainGroup{Tld: tld})
		}
		groups[i].Domains = append(groups[i].Domains, domain)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Tld < groups[j].Tld
	})

	return groups
}
