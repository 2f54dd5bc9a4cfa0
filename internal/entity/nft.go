package entity

import (
	"fmt"

	"github.com/gosimple/slug"
)

type Nft struct {
	TokenId           string  `json:"token_id"`
	SerialNumber      int64   `json:"serial_number"`
	AccountId         string  `json:"account_id"`
	Metadata          string  `json:"metadata,omitempty"`
	Spender           *string `json:"spender"`
	DelegatingSpender *string `json:"delegating_spender,omitempty"`
	Deleted           bool    `json:"deleted"`
	CreatedTimestamp  string  `json:"created_timestamp,omitempty"`
	ModifiedTimestamp string  `json:"modified_timestamp,omitempty"`
}

func (n Nft) Slug() string {
	return CreateNftSlug(n.TokenId, n.SerialNumber)
}

func CreateNftSlug(tokenId string, serialNumber int64) string {
	return slug.Make(fmt.Sprintf("nft-%d-%s", serialNumber, tokenId))
}

// IsListed reports whether an allowance has been granted on the NFT.
func (n Nft) IsListed() bool {
	return n.Spender != nil && *n.Spender != ""
}

func (n Nft) HasMetadata() bool {
	return n.Metadata != ""
}

type NftWithMetadata struct {
	Nft

	Slug          string     `json:"slug"`
	TokenInfo     *TokenInfo `json:"token_info,omitempty"`
	MetadataObj   Metadata   `json:"metadata_obj,omitempty"`
	MetadataError string     `json:"metadata_error,omitempty"`
	ImageUrl      string     `json:"image_url,omitempty"`

	Err error `json:"-"`
}

func NewNftWithMetadata(nft Nft, tokenInfo *TokenInfo) NftWithMetadata {
	return NftWithMetadata{Nft: nft, Slug: nft.Slug(), TokenInfo: tokenInfo}
}

func (n *NftWithMetadata) SetError(err error) {
	n.Err = err
	n.MetadataObj = nil
	if err != nil {
		n.MetadataError = err.Error()
	}
}

func (n NftWithMetadata) HasAttribute(traitType string, values []string) bool {
	for _, attr := range n.MetadataObj.Attributes() {
		if attr.TraitType != traitType {
			continue
		}
		for _, v := range values {
			if attr.Value == v {
				return true
			}
		}
	}

	return false
}
