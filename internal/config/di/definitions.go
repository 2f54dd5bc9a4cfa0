package di

import (
	"time"

	"github.com/ZilDuck/hedera-nft-explorer/internal/config"
	"github.com/ZilDuck/hedera-nft-explorer/internal/event"
	"github.com/ZilDuck/hedera-nft-explorer/internal/loader"
	"github.com/ZilDuck/hedera-nft-explorer/internal/metadata"
	"github.com/ZilDuck/hedera-nft-explorer/internal/mirrornode"
	"github.com/ZilDuck/hedera-nft-explorer/internal/nameservice"
	"github.com/ZilDuck/hedera-nft-explorer/internal/repository"
	"github.com/ZilDuck/hedera-nft-explorer/internal/server"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

const (
	mirrorNodeDef = "mirrornode"
	metadataDef   = "metadata"
	eventsDef     = "events"
	tokenRepoDef  = "token.repo"
	nftRepoDef    = "nft.repo"
	loaderDef     = "loader"
	resolverDef   = "resolver"
	serverDef     = "server"
)

var Definitions = []di.Def{
	{
		Name: mirrorNodeDef,
		Build: func(ctn di.Container) (interface{}, error) {
			c := config.Get().MirrorNode
			client, err := mirrornode.NewClient(c.Url, mirrornode.ClientOptions{
				Timeout: c.Timeout,
				Retries: c.Retries,
				Rps:     c.Rps,
				Burst:   c.Burst,
			})
			if err != nil {
				zap.L().With(zap.Error(err)).Error("Failed to create mirror node client")
				return nil, err
			}

			return mirrornode.NewMirrorNodeService(mirrornode.NewProvider(client)), nil
		},
	},
	{
		Name: metadataDef,
		Build: func(ctn di.Container) (interface{}, error) {
			c := config.Get().Metadata
			return metadata.NewMetadataService(metadata.Options{
				Gateways:   c.IpfsHosts,
				Retries:    c.Retries,
				RetryDelay: c.RetryDelay,
				Timeout:    time.Duration(c.Timeout) * time.Second,
				CacheTTL:   c.CacheTTL,
			}), nil
		},
	},
	{
		Name: eventsDef,
		Build: func(ctn di.Container) (interface{}, error) {
			return event.NewManager(), nil
		},
	},
	{
		Name: tokenRepoDef,
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewTokenRepository(ctn.Get(mirrorNodeDef).(mirrornode.Service), config.Get().MirrorNode.TokenCache), nil
		},
	},
	{
		Name: nftRepoDef,
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewNftRepository(ctn.Get(mirrorNodeDef).(mirrornode.Service)), nil
		},
	},
	{
		Name: loaderDef,
		Build: func(ctn di.Container) (interface{}, error) {
			return loader.NewLoader(
				ctn.Get(nftRepoDef).(repository.NftRepository),
				ctn.Get(tokenRepoDef).(repository.TokenRepository),
				ctn.Get(metadataDef).(metadata.Service),
				ctn.Get(eventsDef).(*event.Manager),
				config.Get().Metadata.ChunkSize,
			), nil
		},
	},
	{
		Name: resolverDef,
		Build: func(ctn di.Container) (interface{}, error) {
			c := config.Get().Hns
			return nameservice.NewResolver(c.Url, time.Duration(c.Timeout)*time.Second, c.CacheTTL), nil
		},
	},
	{
		Name: serverDef,
		Build: func(ctn di.Container) (interface{}, error) {
			c := config.Get()
			return server.NewServer(
				ctn.Get(loaderDef).(loader.Loader),
				ctn.Get(nftRepoDef).(repository.NftRepository),
				ctn.Get(mirrorNodeDef).(mirrornode.Service),
				ctn.Get(metadataDef).(metadata.Service),
				ctn.Get(resolverDef).(nameservice.Resolver),
				c.ItemsPerPage,
				c.ApiMaxRequests,
			), nil
		},
	},
}

// Container gives typed access to the application services.
type Container struct {
	ctn di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}
	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}

	return &Container{ctn: builder.Build()}, nil
}

func (c *Container) Delete() error {
	return c.ctn.Delete()
}

func (c *Container) GetMirrorNode() mirrornode.Service {
	return c.ctn.Get(mirrorNodeDef).(mirrornode.Service)
}

func (c *Container) GetMetadataService() metadata.Service {
	return c.ctn.Get(metadataDef).(metadata.Service)
}

func (c *Container) GetEventManager() *event.Manager {
	return c.ctn.Get(eventsDef).(*event.Manager)
}

func (c *Container) GetTokenRepo() repository.TokenRepository {
	return c.ctn.Get(tokenRepoDef).(repository.TokenRepository)
}

func (c *Container) GetNftRepo() repository.NftRepository {
	return c.ctn.Get(nftRepoDef).(repository.NftRepository)
}

func (c *Container) GetLoader() loader.Loader {
	return c.ctn.Get(loaderDef).(loader.Loader)
}

func (c *Container) GetResolver() nameservice.Resolver {
	return c.ctn.Get(resolverDef).(nameservice.Resolver)
}

func (c *Container) GetServer() server.Server {
	return c.ctn.Get(serverDef).(server.Server)
}
