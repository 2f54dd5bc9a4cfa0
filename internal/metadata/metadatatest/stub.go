// Package metadatatest provides an in-memory metadata service for tests.
package metadatatest

import (
	"context"
	"sync"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/ZilDuck/hedera-nft-explorer/internal/metadata"
)

type Stub struct {
	mu sync.Mutex

	// Documents maps a raw metadata pointer to its document. Unknown pointers
	// fail with metadata.ErrInvalidMetadata.
	Documents map[string]entity.Metadata
	Errors    map[string]error
	Gateway   string

	calls int
}

var _ metadata.Service = (*Stub)(nil)

func New() *Stub {
	return &Stub{
		Documents: make(map[string]entity.Metadata),
		Errors:    make(map[string]error),
		Gateway:   "https://ipfs.io/ipfs/",
	}
}

func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *Stub) GetMetadata(ctx context.Context, nft entity.Nft) (entity.Metadata, error) {
	if !nft.HasMetadata() {
		return nil, metadata.ErrMetadataMissing
	}

	return s.FetchMetadata(ctx, nft.Metadata)
}

func (s *Stub) FetchMetadata(ctx context.Context, pointer string) (entity.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err, ok := s.Errors[pointer]; ok {
		return nil, err
	}
	if md, ok := s.Documents[pointer]; ok {
		return md, nil
	}

	return nil, metadata.ErrInvalidMetadata
}

func (s *Stub) ImageUrl(md entity.Metadata) string {
	return metadata.ImageUrl(md, s.Gateway)
}

func (s *Stub) Gateways() []string {
	return []string{s.Gateway}
}
