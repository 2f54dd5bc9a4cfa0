package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/ZilDuck/hedera-nft-explorer/internal/helper"
	"github.com/ZilDuck/hedera-nft-explorer/internal/log"
	"github.com/ZilDuck/hedera-nft-explorer/internal/metrics"
	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrMetadataTimeout = errors.New("request timeout, IPFS data could not be loaded")
	ErrMetadataMissing = errors.New("NFT has no metadata")
)

const maxMetadataSize = 5 << 20

type Service interface {
	GetMetadata(ctx context.Context, nft entity.Nft) (entity.Metadata, error)
	FetchMetadata(ctx context.Context, pointer string) (entity.Metadata, error)
	ImageUrl(md entity.Metadata) string
	Gateways() []string
}

type Options struct {
	Gateways   []string
	Retries    int
	RetryDelay time.Duration
	Timeout    time.Duration
	CacheTTL   time.Duration
}

type service struct {
	client     *retryablehttp.Client
	gateways   []string
	retries    int
	retryDelay time.Duration
	timeout    time.Duration
	cache      *cache.Cache
	group      singleflight.Group
}

func NewMetadataService(opts Options) Service {
	client := retryablehttp.NewClient()
	client.Logger = log.RetryableLogger{Component: "metadata"}
	// rotation across gateways replaces retrying the same host
	client.RetryMax = 0

	retries := opts.Retries
	if retries < 1 {
		retries = 1
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &service{
		client:     client,
		gateways:   opts.Gateways,
		retries:    retries,
		retryDelay: opts.RetryDelay,
		timeout:    timeout,
		cache:      cache.New(ttl, 2*ttl),
	}
}

func (s *service) Gateways() []string {
	return s.gateways
}

// GetMetadata resolves the metadata of nft, caching successful lookups per
// token id and pointer.
func (s *service) GetMetadata(ctx context.Context, nft entity.Nft) (entity.Metadata, error) {
	if !nft.HasMetadata() {
		return nil, ErrMetadataMissing
	}

	key := nft.TokenId + "|" + nft.Metadata
	if md, found := s.cache.Get(key); found {
		metrics.MetadataCacheHits.Inc()
		return md.(entity.Metadata), nil
	}

	// the shared fetch is bounded by the service timeout, not by whoever started it
	result := s.group.DoChan(key, func() (interface{}, error) {
		md, err := s.FetchMetadata(context.WithoutCancel(ctx), nft.Metadata)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, md, cache.DefaultExpiration)
		return md, nil
	})

	var md interface{}
	var err error
	select {
	case res := <-result:
		md, err = res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err != nil {
		zap.L().With(
			zap.Error(err),
			zap.String("tokenId", nft.TokenId),
			zap.Int64("serialNumber", nft.SerialNumber),
		).Debug("Failed to get NFT metadata")
		return nil, err
	}

	return md.(entity.Metadata), nil
}

// FetchMetadata decodes pointer and fetches the JSON document it references.
// Invalid pointers fail without touching the network.
func (s *service) FetchMetadata(ctx context.Context, pointer string) (entity.Metadata, error) {
	uri, err := Decode(pointer)
	if err != nil {
		metrics.MetadataResolved.WithLabelValues("invalid").Inc()
		return nil, err
	}

	md, err := s.fetch(ctx, Normalize(uri))
	switch {
	case err == nil:
		metrics.MetadataResolved.WithLabelValues("success").Inc()
	case errors.Is(err, ErrMetadataTimeout):
		metrics.MetadataResolved.WithLabelValues("timeout").Inc()
	default:
		metrics.MetadataResolved.WithLabelValues("failed").Inc()
	}

	return md, err
}

func (s *service) fetch(parent context.Context, uri string) (entity.Metadata, error) {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	var md entity.Metadata
	attempt := 0
	operation := func() error {
		metadataUrl := GatewayUrl(s.gateways, uri, attempt)
		gateway := s.gatewayLabel(uri, attempt)
		attempt++

		data, err := s.fetchJson(ctx, metadataUrl)
		if err != nil {
			metrics.GatewayFetches.WithLabelValues(gateway, "failure").Inc()
			zap.L().With(zap.Error(err), zap.String("url", metadataUrl), zap.Int("attempt", attempt)).Debug("Metadata fetch failed")
			return err
		}
		metrics.GatewayFetches.WithLabelValues(gateway, "success").Inc()
		md = data
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryDelay), uint64(s.retries-1)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		if parent.Err() != nil {
			return nil, parent.Err()
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrMetadataTimeout
		}
		return nil, err
	}

	return md, nil
}

func (s *service) fetchJson(ctx context.Context, url string) (entity.Metadata, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unsuccessful: %s", resp.Status)
	}

	var md entity.Metadata
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataSize)).Decode(&md); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if md == nil {
		return nil, errors.New("decode metadata: empty document")
	}

	return md, nil
}

func (s *service) gatewayLabel(uri string, attempt int) string {
	if helper.IsHttp(uri) || len(s.gateways) == 0 {
		return "direct"
	}

	return s.gateways[attempt%len(s.gateways)]
}

func (s *service) ImageUrl(md entity.Metadata) string {
	if len(s.gateways) == 0 {
		return ""
	}

	return ImageUrl(md, s.gateways[0])
}
