package main

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"

	"github.com/ZilDuck/hedera-nft-explorer/internal/config"
	"github.com/ZilDuck/hedera-nft-explorer/internal/config/di"
	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/ZilDuck/hedera-nft-explorer/internal/event"
	"github.com/ZilDuck/hedera-nft-explorer/internal/gallery"
	"github.com/ZilDuck/hedera-nft-explorer/internal/loader"
	"github.com/ZilDuck/hedera-nft-explorer/internal/mirrornode"
	"github.com/ZilDuck/hedera-nft-explorer/internal/nameservice"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var container *di.Container

type galleryPage struct {
	Id         string                   `json:"id"`
	Page       int                      `json:"page"`
	PageCount  int                      `json:"pageCount"`
	Total      int                      `json:"total"`
	Items      []entity.NftWithMetadata `json:"items"`
	Properties []gallery.Property       `json:"properties"`
}

func main() {
	config.Init("explorer")

	var err error
	if container, err = di.NewContainer(); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}
	defer func() { _ = container.Delete() }()

	events := container.GetEventManager()
	failures := events.AddEventListener(event.MetadataFailedEvent, func(msg interface{}) {
		nft := msg.(entity.NftWithMetadata)
		zap.L().With(zap.String("tokenId", nft.TokenId), zap.Int64("serialNumber", nft.SerialNumber), zap.String("error", nft.MetadataError)).Debug("Metadata unavailable")
	})
	defer events.RemoveEventListener(failures)

	app := &cli.App{
		Name:  "explorer",
		Usage: "browse Hedera NFT collections and accounts",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-requests", Value: config.Get().MaxRequests, Usage: "cap on follow-up mirror node page requests, 0 for no cap"},
			&cli.IntFlag{Name: "page", Value: 1, Usage: "page to print"},
			&cli.IntFlag{Name: "per-page", Value: config.Get().ItemsPerPage, Usage: "NFTs per page"},
			&cli.StringSliceFlag{Name: "attr", Usage: "filter by attribute, trait=value"},
		},
		Commands: []*cli.Command{
			{
				Name:      "collection",
				Usage:     "show the NFTs of a token",
				ArgsUsage: "<tokenId>",
				Action:    showCollection,
			},
			{
				Name:      "account",
				Usage:     "show the NFTs owned by an account",
				ArgsUsage: "<accountId>",
				Action:    showAccount,
			},
			{
				Name:      "domain",
				Usage:     "resolve a domain and show the NFTs of its owner",
				ArgsUsage: "<domain>",
				Action:    showDomain,
			},
			{
				Name:      "domains",
				Usage:     "list the domains of an account grouped by TLD",
				ArgsUsage: "<accountId>",
				Action:    listDomains,
			},
			{
				Name:      "holders",
				Usage:     "list the holders of a token",
				ArgsUsage: "<tokenId>",
				Action:    listHolders,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "exclude-listed", Usage: "skip NFTs with an allowance"},
				},
			},
			{
				Name:      "nft",
				Usage:     "show a single NFT",
				ArgsUsage: "<tokenId> <serialNumber>",
				Action:    showNft,
			},
			{
				Name:   "recent",
				Usage:  "list the most recently created NFT tokens",
				Action: listRecent,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 25},
				},
			},
			{
				Name:   "accounts",
				Usage:  "list accounts in an id range",
				Action: listAccounts,
				Flags:  rangeFlags(),
			},
			{
				Name:   "tokens",
				Usage:  "list NFT tokens in an id range",
				Action: listTokens,
				Flags:  rangeFlags(),
			},
			{
				Name:   "transactions",
				Usage:  "list NFT transactions since a consensus timestamp, one type after another",
				Action: listTransactions,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "type", Value: cli.NewStringSlice(mirrornode.NftTransactionTypes...), Usage: "transaction types, listed in order"},
					&cli.StringFlag{Name: "from", Usage: "consensus timestamp lower bound, seconds.nanos"},
				},
			},
			{
				Name:      "first",
				Usage:     "show the first NFT of a token",
				ArgsUsage: "<tokenId>",
				Action:    showFirst,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Explorer failed")
	}
}

func showCollection(c *cli.Context) error {
	tokenId, err := requireArg(c, 0, "tokenId")
	if err != nil {
		return err
	}

	g := gallery.NewCollectionGallery(container.GetLoader(), c.Int("max-requests"), container.GetEventManager())
	return showGallery(c, g, tokenId)
}

func showAccount(c *cli.Context) error {
	accountId, err := requireArg(c, 0, "accountId")
	if err != nil {
		return err
	}

	g := gallery.NewAccountGallery(container.GetLoader(), c.Int("max-requests"), container.GetEventManager())
	return showGallery(c, g, accountId)
}

func showDomain(c *cli.Context) error {
	domain, err := requireArg(c, 0, "domain")
	if err != nil {
		return err
	}

	accountId, err := container.GetResolver().ResolveSLD(c.Context, domain)
	if err != nil {
		return err
	}
	zap.L().With(zap.String("domain", domain), zap.String("accountId", accountId)).Info("Domain resolved")

	g := gallery.NewAccountGallery(container.GetLoader(), c.Int("max-requests"), container.GetEventManager())
	return showGallery(c, g, accountId)
}

func showGallery(c *cli.Context, g *gallery.Gallery, id string) error {
	selected, err := gallery.ParseSelection(c.StringSlice("attr"))
	if err != nil {
		return err
	}

	progress := container.GetEventManager().AddEventListener(event.MetadataChunkLoadedEvent, func(msg interface{}) {
		chunk := msg.(loader.ChunkLoaded)
		zap.L().With(zap.Int("loaded", chunk.Loaded), zap.Int("total", chunk.Total)).Info("Loading metadata")
	})
	defer container.GetEventManager().RemoveEventListener(progress)

	g.Show(c.Context, id)
	g.Wait()

	state := g.State()
	if state.Err != nil {
		return state.Err
	}

	perPage := c.Int("per-page")
	filtered := g.Filter(selected)

	return printJson(galleryPage{
		Id:         id,
		Page:       c.Int("page"),
		PageCount:  gallery.PageCount(len(filtered), perPage),
		Total:      len(filtered),
		Items:      gallery.Page(filtered, c.Int("page"), perPage),
		Properties: g.Properties(),
	})
}

func listDomains(c *cli.Context) error {
	accountId, err := requireArg(c, 0, "accountId")
	if err != nil {
		return err
	}

	domains, err := container.GetResolver().GetAllDomainsForAccount(c.Context, accountId)
	if err != nil {
		return err
	}

	return printJson(nameservice.GroupByTld(domains))
}

func listHolders(c *cli.Context) error {
	tokenId, err := requireArg(c, 0, "tokenId")
	if err != nil {
		return err
	}

	nfts, err := container.GetNftRepo().GetNfts(c.Context, tokenId, c.Int("max-requests"))
	if err != nil {
		return err
	}

	return printJson(gallery.Holders(nfts, !c.Bool("exclude-listed")))
}

func showNft(c *cli.Context) error {
	tokenId, err := requireArg(c, 0, "tokenId")
	if err != nil {
		return err
	}
	serial, err := requireArg(c, 1, "serialNumber")
	if err != nil {
		return err
	}
	serialNumber, err := strconv.ParseInt(serial, 10, 64)
	if err != nil {
		return err
	}

	nft, err := container.GetLoader().GetNft(c.Context, tokenId, serialNumber)
	if err != nil {
		return err
	}

	return printJson(nft)
}

func listRecent(c *cli.Context) error {
	tokens, err := container.GetMirrorNode().GetMostRecentNftTokens(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}

	return printJson(tokens)
}

func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{Name: "gt", Usage: "lower id bound, the entity number of 0.0.n"},
		&cli.Int64Flag{Name: "lt", Usage: "upper id bound, the entity number of 0.0.n"},
		&cli.IntFlag{Name: "limit", Value: 100},
	}
}

func listAccounts(c *cli.Context) error {
	accounts, err := container.GetMirrorNode().ListAccounts(c.Context, c.Int64("gt"), c.Int64("lt"), c.Int("limit"))
	if err != nil {
		return err
	}

	return printJson(accounts)
}

func listTokens(c *cli.Context) error {
	tokens, err := container.GetMirrorNode().ListNftTokens(c.Context, c.Int64("gt"), c.Int64("lt"), c.Int("limit"))
	if err != nil {
		return err
	}

	return printJson(tokens)
}

func listTransactions(c *cli.Context) error {
	onChunk := func(chunk, all []entity.Transaction) {
		zap.L().With(zap.Int("chunk", len(chunk)), zap.Int("total", len(all))).Info("Listing transactions")
	}

	txs, err := container.GetMirrorNode().ListTransactions(c.Context, c.StringSlice("type"), c.String("from"), c.Int("max-requests"), onChunk)
	if err != nil {
		return err
	}

	return printJson(txs)
}

func showFirst(c *cli.Context) error {
	tokenId, err := requireArg(c, 0, "tokenId")
	if err != nil {
		return err
	}

	nft, err := container.GetLoader().GetFirstNft(c.Context, tokenId)
	if err != nil {
		return err
	}
	if nft == nil {
		zap.L().With(zap.String("tokenId", tokenId)).Warn("Token has no NFTs")
		return nil
	}

	return printJson(nft)
}

func requireArg(c *cli.Context, idx int, name string) (string, error) {
	arg := c.Args().Get(idx)
	if arg == "" {
		return "", errors.New("missing argument " + name)
	}

	return arg, nil
}

func printJson(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
