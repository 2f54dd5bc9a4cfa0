package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/ZilDuck/hedera-nft-explorer/internal/gallery"
	"github.com/ZilDuck/hedera-nft-explorer/internal/loader"
	"github.com/ZilDuck/hedera-nft-explorer/internal/metadata"
	"github.com/ZilDuck/hedera-nft-explorer/internal/mirrornode"
	"github.com/ZilDuck/hedera-nft-explorer/internal/nameservice"
	"github.com/ZilDuck/hedera-nft-explorer/internal/repository"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultMaxRequests caps follow-up mirror node requests per listing when none is configured.
const DefaultMaxRequests = 50

type Server struct {
	loader          loader.Loader
	nftRepo         repository.NftRepository
	mirrorNode      mirrornode.Service
	metadataService metadata.Service
	resolver        nameservice.Resolver
	perPage         int
	maxRequests     int
}

func NewServer(
	nftLoader loader.Loader,
	nftRepo repository.NftRepository,
	mirrorNode mirrornode.Service,
	metadataService metadata.Service,
	resolver nameservice.Resolver,
	perPage int,
	maxRequests int,
) Server {
	if perPage <= 0 {
		perPage = gallery.DefaultPerPage
	}
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}

	return Server{nftLoader, nftRepo, mirrorNode, metadataService, resolver, perPage, maxRequests}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.HandleFunc("/collections/{tokenId}/nfts", s.handleCollectionNfts).Methods("GET")
	r.HandleFunc("/collections/{tokenId}/stream", s.handleCollectionStream).Methods("GET")
	r.HandleFunc("/collections/{tokenId}/holders", s.handleCollectionHolders).Methods("GET")
	r.HandleFunc("/collections/{tokenId}/properties", s.handleCollectionProperties).Methods("GET")

	r.HandleFunc("/accounts/{accountId}", s.handleGetAccount).Methods("GET")
	r.HandleFunc("/accounts/{accountId}/nfts", s.handleAccountNfts).Methods("GET")
	r.HandleFunc("/accounts/{accountId}/domains", s.handleAccountDomains).Methods("GET")
	r.HandleFunc("/domains/{domain}", s.handleDomain).Methods("GET")

	r.HandleFunc("/nfts/{tokenId}/{serialNumber}", s.handleGetNft).Methods("GET")
	r.HandleFunc("/nfts/{tokenId}/{serialNumber}/image", s.handleGetImage).Methods("GET")

	r.HandleFunc("/tokens/recent", s.handleRecentTokens).Methods("GET")

	r.NotFoundHandler = notFoundHandler()

	return r
}

type Page struct {
	Items      []entity.NftWithMetadata `json:"items"`
	Page       int                      `json:"page"`
	PerPage    int                      `json:"perPage"`
	Total      int                      `json:"total"`
	PageCount  int                      `json:"pageCount"`
	Properties []gallery.Property       `json:"properties"`
}

type ChunkLine struct {
	Chunk  []entity.NftWithMetadata `json:"chunk"`
	Loaded int                      `json:"loaded"`
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "ok")
}

func (s Server) handleCollectionNfts(w http.ResponseWriter, r *http.Request) {
	tokenId := mux.Vars(r)["tokenId"]

	nfts, err := s.loader.ListAllNftsWithMetadata(r.Context(), tokenId, s.maxRequests, nil)
	if err != nil {
		writeError(w, r, err, "Failed to load collection")
		return
	}

	s.writePage(w, r, nfts)
}

func (s Server) handleAccountNfts(w http.ResponseWriter, r *http.Request) {
	accountId := mux.Vars(r)["accountId"]

	nfts, err := s.loader.ListAllAccountNftsWithMetadata(r.Context(), accountId, s.maxRequests, nil)
	if err != nil {
		writeError(w, r, err, "Failed to load account")
		return
	}

	s.writePage(w, r, nfts)
}

func (s Server) writePage(w http.ResponseWriter, r *http.Request, nfts []entity.NftWithMetadata) {
	selected, err := gallery.ParseSelection(r.URL.Query()["attr"])
	if err != nil {
		writeErrorStatus(w, r, http.StatusBadRequest, err, err.Error())
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "perPage", s.perPage)
	filtered := gallery.Filter(nfts, selected)

	writeJson(w, http.StatusOK, Page{
		Items:      gallery.Page(filtered, page, perPage),
		Page:       page,
		PerPage:    perPage,
		Total:      len(filtered),
		PageCount:  gallery.PageCount(len(filtered), perPage),
		Properties: gallery.Properties(nfts),
	})
}

// handleCollectionStream writes one JSON line per loaded chunk.
func (s Server) handleCollectionStream(w http.ResponseWriter, r *http.Request) {
	tokenId := mux.Vars(r)["tokenId"]
	flusher, _ := w.(http.Flusher)

	w.Header().Set("Content-Type", "application/x-ndjson")
	encoder := json.NewEncoder(w)
	started := false

	_, err := s.loader.ListAllNftsWithMetadata(r.Context(), tokenId, s.maxRequests, func(chunk, all []entity.NftWithMetadata) {
		if !started {
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if err := encoder.Encode(ChunkLine{Chunk: chunk, Loaded: len(all)}); err != nil {
			zap.L().With(zap.Error(err), zap.String("tokenId", tokenId)).Warn("Failed to write chunk")
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	})
	if err != nil {
		if started {
			zap.L().With(zap.Error(err), zap.String("tokenId", tokenId)).Warn("Collection stream aborted")
			return
		}
		writeError(w, r, err, "Failed to load collection")
		return
	}
	if !started {
		w.WriteHeader(http.StatusOK)
	}
}

func (s Server) handleCollectionHolders(w http.ResponseWriter, r *http.Request) {
	tokenId := mux.Vars(r)["tokenId"]
	excludeListed, _ := strconv.ParseBool(r.URL.Query().Get("excludeListed"))

	nfts, err := s.nftRepo.GetNfts(r.Context(), tokenId, s.maxRequests)
	if err != nil {
		writeError(w, r, err, "Failed to load holders")
		return
	}

	writeJson(w, http.StatusOK, gallery.Holders(nfts, !excludeListed))
}

func (s Server) handleCollectionProperties(w http.ResponseWriter, r *http.Request) {
	tokenId := mux.Vars(r)["tokenId"]

	nfts, err := s.loader.ListAllNftsWithMetadata(r.Context(), tokenId, s.maxRequests, nil)
	if err != nil {
		writeError(w, r, err, "Failed to load collection")
		return
	}

	writeJson(w, http.StatusOK, gallery.Properties(nfts))
}

func (s Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.mirrorNode.GetAccount(r.Context(), mux.Vars(r)["accountId"])
	if err != nil {
		writeError(w, r, err, "Account not available")
		return
	}

	writeJson(w, http.StatusOK, account)
}

func (s Server) handleAccountDomains(w http.ResponseWriter, r *http.Request) {
	accountId := mux.Vars(r)["accountId"]

	domains, err := s.resolver.GetAllDomainsForAccount(r.Context(), accountId)
	if err != nil {
		writeError(w, r, err, "Failed to load domains")
		return
	}

	writeJson(w, http.StatusOK, nameservice.GroupByTld(domains))
}

func (s Server) handleDomain(w http.ResponseWriter, r *http.Request) {
	domain := mux.Vars(r)["domain"]

	accountId, err := s.resolver.ResolveSLD(r.Context(), domain)
	if err != nil {
		writeError(w, r, err, "Failed to resolve domain")
		return
	}

	writeJson(w, http.StatusOK, map[string]string{"domain": domain, "accountId": accountId})
}

func (s Server) handleGetNft(w http.ResponseWriter, r *http.Request) {
	tokenId, serialNumber, err := getNftId(r)
	if err != nil {
		writeErrorStatus(w, r, http.StatusBadRequest, err, "Invalid serial number")
		return
	}

	nft, err := s.loader.GetNft(r.Context(), tokenId, serialNumber)
	if err != nil {
		writeError(w, r, err, "NFT not available")
		return
	}

	writeJson(w, http.StatusOK, nft)
}

func (s Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	tokenId, serialNumber, err := getNftId(r)
	if err != nil {
		writeErrorStatus(w, r, http.StatusBadRequest, err, "Invalid serial number")
		return
	}

	nft, err := s.loader.GetNft(r.Context(), tokenId, serialNumber)
	if err != nil {
		writeError(w, r, err, "NFT not available")
		return
	}
	imageUrl := s.metadataService.ImageUrl(nft.MetadataObj)
	if imageUrl == "" {
		writeErrorStatus(w, r, http.StatusNotFound, nft.Err, "NFT asset not available")
		return
	}

	zap.L().With(zap.String("tokenId", tokenId), zap.Int64("serialNumber", serialNumber)).Debug("Redirecting to nft image")
	http.Redirect(w, r, imageUrl, http.StatusFound)
}

func (s Server) handleRecentTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.mirrorNode.GetMostRecentNftTokens(r.Context(), queryInt(r, "limit", 25))
	if err != nil {
		writeError(w, r, err, "Failed to load tokens")
		return
	}

	writeJson(w, http.StatusOK, tokens)
}

func getNftId(r *http.Request) (string, int64, error) {
	vars := mux.Vars(r)
	tokenId, ok := vars["tokenId"]
	if !ok {
		return "", 0, errors.New("invalid parameters")
	}

	serialNumber, err := strconv.ParseInt(vars["serialNumber"], 10, 64)
	if err != nil {
		return "", 0, err
	}

	return tokenId, serialNumber, nil
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	val, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || val <= 0 {
		return defaultValue
	}

	return val
}

func writeJson(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().With(zap.Error(err)).Warn("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	writeErrorStatus(w, r, statusFor(err), err, msg)
}

// writeErrorStatus logs err under a fresh error id and returns that id to the client.
func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error, msg string) {
	apiErr := NewError(r.URL.Path, msg)

	logger := zap.L().With(zap.Error(err), zap.String("errorId", apiErr.ErrorId), zap.String("path", apiErr.Path))
	if status >= http.StatusInternalServerError {
		logger.Error(msg)
	} else {
		logger.Warn(msg)
	}

	writeJson(w, status, apiErr)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNftNotFound),
		errors.Is(err, repository.ErrTokenNotFound),
		errors.Is(err, nameservice.ErrDomainNotFound),
		errors.Is(err, mirrornode.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, nameservice.ErrInvalidDomain):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = fmt.Fprintf(w, "Page not found")
	})
}
