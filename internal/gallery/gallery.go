package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/ZilDuck/hedera-nft-explorer/internal/event"
	"github.com/ZilDuck/hedera-nft-explorer/internal/loader"
	"go.uber.org/zap"
)

var ErrNoNfts = errors.New("could not find NFTs")

// Source loads every NFT behind id, reporting progress through onChunk.
type Source func(ctx context.Context, id string, onChunk loader.ChunkFunc) ([]entity.NftWithMetadata, error)

// State is a snapshot of what the gallery currently shows.
type State struct {
	Id      string                   `json:"id"`
	Nfts    []entity.NftWithMetadata `json:"nfts"`
	Loading bool                     `json:"loading"`
	Err     error                    `json:"-"`
}

// Gallery shows the NFTs of a single id at a time. Results of a load only
// become visible while the id it was started for is still the current one.
type Gallery struct {
	source Source
	events *event.Manager

	mu         sync.Mutex
	id         string
	generation uint64
	cancel     context.CancelFunc
	nfts       []entity.NftWithMetadata
	loading    bool
	err        error

	wg sync.WaitGroup
}

func NewGallery(source Source, events *event.Manager) *Gallery {
	return &Gallery{source: source, events: events}
}

func NewCollectionGallery(l loader.Loader, maxRequests int, events *event.Manager) *Gallery {
	return NewGallery(func(ctx context.Context, tokenId string, onChunk loader.ChunkFunc) ([]entity.NftWithMetadata, error) {
		return l.ListAllNftsWithMetadata(ctx, tokenId, maxRequests, onChunk)
	}, events)
}

func NewAccountGallery(l loader.Loader, maxRequests int, events *event.Manager) *Gallery {
	return NewGallery(func(ctx context.Context, accountId string, onChunk loader.ChunkFunc) ([]entity.NftWithMetadata, error) {
		return l.ListAllAccountNftsWithMetadata(ctx, accountId, maxRequests, onChunk)
	}, events)
}

// Show switches the gallery to id and starts loading it in the background.
// Any load still running for a previous id is cancelled.
func (g *Gallery) Show(ctx context.Context, id string) {
	loadCtx, cancel := context.WithCancel(ctx)

	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
	}
	g.generation++
	generation := g.generation
	g.id = id
	g.cancel = cancel
	g.nfts = nil
	g.loading = true
	g.err = nil
	state := g.snapshot()
	g.mu.Unlock()

	g.notify(state)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer cancel()
		g.load(loadCtx, id, generation)
	}()
}

func (g *Gallery) load(ctx context.Context, id string, generation uint64) {
	zap.L().With(zap.String("id", id)).Info("Gallery: loading")

	nfts, err := g.source(ctx, id, func(chunk, all []entity.NftWithMetadata) {
		g.update(id, generation, func() {
			g.nfts = all
		})
	})
	if err == nil && len(nfts) == 0 {
		err = fmt.Errorf("%w for %s", ErrNoNfts, id)
	}

	g.update(id, generation, func() {
		g.loading = false
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("id", id)).Warn("Gallery: load failed")
			g.err = err
			return
		}
		g.nfts = nfts
	})
}

// update applies fn unless a newer Show has replaced the load.
func (g *Gallery) update(id string, generation uint64, fn func()) {
	g.mu.Lock()
	if generation != g.generation || id != g.id {
		current := g.id
		g.mu.Unlock()
		zap.L().With(zap.String("id", id), zap.String("current", current)).Debug("Gallery: discarding stale result")
		return
	}
	fn()
	state := g.snapshot()
	g.mu.Unlock()

	g.notify(state)
}

func (g *Gallery) snapshot() State {
	return State{
		Id:      g.id,
		Nfts:    g.nfts[:len(g.nfts):len(g.nfts)],
		Loading: g.loading,
		Err:     g.err,
	}
}

func (g *Gallery) notify(state State) {
	if g.events != nil {
		g.events.EmitEvent(event.GalleryUpdatedEvent, state)
	}
}

// Wait blocks until every load started so far has returned.
func (g *Gallery) Wait() {
	g.wg.Wait()
}

func (g *Gallery) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Gallery) Nfts() []entity.NftWithMetadata {
	return g.State().Nfts
}

func (g *Gallery) Loading() bool {
	return g.State().Loading
}

func (g *Gallery) Err() error {
	return g.State().Err
}

func (g *Gallery) DismissError() {
	g.mu.Lock()
	g.err = nil
	state := g.snapshot()
	g.mu.Unlock()

	g.notify(state)
}

func (g *Gallery) Properties() []Property {
	return Properties(g.Nfts())
}

func (g *Gallery) Filter(selected map[string][]string) []entity.NftWithMetadata {
	return Filter(g.Nfts(), selected)
}
