package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatewayRecorder serves /g<N>/<cid> and records which gateway each request hit.
type gatewayRecorder struct {
	mu      sync.Mutex
	hits    []string
	healthy map[string]bool
	delay   time.Duration
}

func (g *gatewayRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	g.mu.Lock()
	g.hits = append(g.hits, parts[0])
	healthy := g.healthy[parts[0]]
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-r.Context().Done():
			return
		}
	}

	if !healthy {
		http.Error(w, "gateway down", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"name":"Hash Boo #1","image":"ipfs://` + testCid + `","attributes":[{"trait_type":"Eyes","value":"Laser"}]}`))
}

func (g *gatewayRecorder) Hits() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string{}, g.hits...)
}

func newTestService(t *testing.T, rec *gatewayRecorder, gateways int, opts Options) Service {
	t.Helper()
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	opts.Gateways = make([]string, 0, gateways)
	for i := 0; i < gateways; i++ {
		opts.Gateways = append(opts.Gateways, srv.URL+"/g"+string(rune('0'+i))+"/")
	}
	if opts.Retries == 0 {
		opts.Retries = 5
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}

	return NewMetadataService(opts)
}

func TestFetchMetadata_ResolvesThroughFirstGateway(t *testing.T) {
	rec := &gatewayRecorder{healthy: map[string]bool{"g0": true}}
	svc := newTestService(t, rec, 3, Options{})

	md, err := svc.FetchMetadata(context.Background(), encode("ipfs://"+testCid))
	require.NoError(t, err)

	assert.Equal(t, "Hash Boo #1", md.Name())
	assert.Equal(t, []entity.Attribute{{TraitType: "Eyes", Value: "Laser"}}, md.Attributes())
	assert.Equal(t, []string{"g0"}, rec.Hits())
}

func TestFetchMetadata_BareCidIsNormalised(t *testing.T) {
	rec := &gatewayRecorder{healthy: map[string]bool{"g0": true}}
	svc := newTestService(t, rec, 1, Options{})

	_, err := svc.FetchMetadata(context.Background(), encode(testCid))
	require.NoError(t, err)
	assert.Equal(t, []string{"g0"}, rec.Hits())
}

func TestFetchMetadata_RotatesGatewaysOnFailure(t *testing.T) {
	rec := &gatewayRecorder{healthy: map[string]bool{"g2": true}}
	svc := newTestService(t, rec, 3, Options{})

	_, err := svc.FetchMetadata(context.Background(), encode("ipfs://"+testCid))
	require.NoError(t, err)
	assert.Equal(t, []string{"g0", "g1", "g2"}, rec.Hits())
}

func TestFetchMetadata_AttemptNUsesGatewayNModCount(t *testing.T) {
	rec := &gatewayRecorder{healthy: map[string]bool{}}
	svc := newTestService(t, rec, 2, Options{Retries: 5})

	_, err := svc.FetchMetadata(context.Background(), encode("ipfs://"+testCid))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMetadataTimeout)
	assert.Equal(t, []string{"g0", "g1", "g0", "g1", "g0"}, rec.Hits())
}

func TestFetchMetadata_InvalidPointerMakesNoRequest(t *testing.T) {
	rec := &gatewayRecorder{healthy: map[string]bool{"g0": true}}
	svc := newTestService(t, rec, 2, Options{})

	for _, pointer := range []string{encode("too short"), "%%%not-base64%%%", encode(strings.Repeat("x", 20))} {
		_, err := svc.FetchMetadata(context.Background(), pointer)
		assert.ErrorIs(t, err, ErrInvalidMetadata)
	}
	assert.Empty(t, rec.Hits())
}

func TestFetchMetadata_TimesOut(t *testing.T) {
	rec := &gatewayRecorder{healthy: map[string]bool{"g0": true, "g1": true}, delay: time.Second}
	svc := newTestService(t, rec, 2, Options{Timeout: 100 * time.Millisecond})

	start := time.Now()
	_, err := svc.FetchMetadata(context.Background(), encode("ipfs://"+testCid))

	assert.ErrorIs(t, err, ErrMetadataTimeout)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestFetchMetadata_DirectUrl(t *testing.T) {
	rec := &gatewayRecorder{healthy: map[string]bool{"direct": true}}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	svc := NewMetadataService(Options{Gateways: []string{"https://unused.example/ipfs/"}, Retries: 2, Timeout: time.Second})
	md, err := svc.FetchMetadata(context.Background(), encode(srv.URL+"/direct/1.json"))
	require.NoError(t, err)
	assert.Equal(t, "Hash Boo #1", md.Name())
	assert.Equal(t, []string{"direct"}, rec.Hits())
}

func TestGetMetadata_CachesPerTokenAndPointer(t *testing.T) {
	rec := &gatewayRecorder{healthy: map[string]bool{"g0": true}}
	svc := newTestService(t, rec, 1, Options{})

	nft := entity.Nft{TokenId: "0.0.1", SerialNumber: 1, Metadata: encode("ipfs://" + testCid)}
	for i := 0; i < 3; i++ {
		md, err := svc.GetMetadata(context.Background(), nft)
		require.NoError(t, err)
		assert.Equal(t, "Hash Boo #1", md.Name())
	}
	assert.Len(t, rec.Hits(), 1)

	other := nft
	other.TokenId = "0.0.2"
	_, err := svc.GetMetadata(context.Background(), other)
	require.NoError(t, err)
	assert.Len(t, rec.Hits(), 2)
}

func TestGetMetadata_FailuresAreNotCached(t *testing.T) {
	rec := &gatewayRecorder{healthy: map[string]bool{}}
	svc := newTestService(t, rec, 1, Options{Retries: 1})
	nft := entity.Nft{TokenId: "0.0.1", SerialNumber: 1, Metadata: encode("ipfs://" + testCid)}

	_, err := svc.GetMetadata(context.Background(), nft)
	require.Error(t, err)

	rec.mu.Lock()
	rec.healthy["g0"] = true
	rec.mu.Unlock()

	md, err := svc.GetMetadata(context.Background(), nft)
	require.NoError(t, err)
	assert.Equal(t, "Hash Boo #1", md.Name())
}

func TestGetMetadata_Missing(t *testing.T) {
	svc := NewMetadataService(Options{Gateways: []string{gateway}})

	_, err := svc.GetMetadata(context.Background(), entity.Nft{TokenId: "0.0.1", SerialNumber: 1})
	assert.ErrorIs(t, err, ErrMetadataMissing)
}

func TestService_ImageUrlUsesFirstGateway(t *testing.T) {
	svc := NewMetadataService(Options{Gateways: []string{gateway, "https://other/ipfs/"}})

	assert.Equal(t, gateway+testCid+"?class=thumbnail", svc.ImageUrl(entity.Metadata{"image": "ipfs://" + testCid}))
}

func TestGetMetadata_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	rec := &gatewayRecorder{healthy: map[string]bool{"g0": true}, delay: 200 * time.Millisecond}
	svc := newTestService(t, rec, 1, Options{})
	nft := entity.Nft{TokenId: "0.0.1", SerialNumber: 1, Metadata: encode("ipfs://" + testCid)}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.GetMetadata(ctxA, nft)
		errA <- err
	}()
	require.Eventually(t, func() bool { return len(rec.Hits()) == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		md  entity.Metadata
		err error
	}
	resB := make(chan result, 1)
	go func() {
		md, err := svc.GetMetadata(context.Background(), nft)
		resB <- result{md, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.Equal(t, "Hash Boo #1", res.md.Name())
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never returned")
	}
	assert.Equal(t, []string{"g0"}, rec.Hits())
}
