package gallery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
)

const DefaultPerPage = 12

type Property struct {
	TraitType string   `json:"trait_type"`
	Values    []string `json:"values"`
}

// Properties collects the distinct values of every trait, both in first-seen order.
func Properties(nfts []entity.NftWithMetadata) []Property {
	properties := make([]Property, 0)
	index := make(map[string]int)
	seen := make(map[string]map[string]bool)

	for _, nft := range nfts {
		for _, attr := range nft.MetadataObj.Attributes() {
			idx, ok := index[attr.TraitType]
			if !ok {
				idx = len(properties)
				index[attr.TraitType] = idx
				seen[attr.TraitType] = make(map[string]bool)
				properties = append(properties, Property{TraitType: attr.TraitType, Values: []string{}})
			}
			if seen[attr.TraitType][attr.Value] {
				continue
			}
			seen[attr.TraitType][attr.Value] = true
			properties[idx].Values = append(properties[idx].Values, attr.Value)
		}
	}

	return properties
}

// Filter keeps the NFTs matching at least one selected value of every trait
// that has a selection.
func Filter(nfts []entity.NftWithMetadata, selected map[string][]string) []entity.NftWithMetadata {
	filtered := make([]entity.NftWithMetadata, 0, len(nfts))
	for _, nft := range nfts {
		if matches(nft, selected) {
			filtered = append(filtered, nft)
		}
	}

	return filtered
}

func matches(nft entity.NftWithMetadata, selected map[string][]string) bool {
	for traitType, values := range selected {
		if len(values) == 0 {
			continue
		}
		if !nft.HasAttribute(traitType, values) {
			return false
		}
	}

	return true
}

// ParseSelection turns "trait=value" pairs into a Filter selection.
func ParseSelection(pairs []string) (map[string][]string, error) {
	selected := make(map[string][]string)
	for _, pair := range pairs {
		traitType, value, ok := strings.Cut(pair, "=")
		traitType = strings.TrimSpace(traitType)
		if !ok || traitType == "" {
			return nil, fmt.Errorf("invalid attribute filter %q, expected trait=value", pair)
		}
		selected[traitType] = append(selected[traitType], strings.TrimSpace(value))
	}

	return selected, nil
}

// Page returns the 1-based page of items. Pages out of range are empty.
func Page(items []entity.NftWithMetadata, page, perPage int) []entity.NftWithMetadata {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		return []entity.NftWithMetadata{}
	}

	start := (page - 1) * perPage
	if start >= len(items) {
		return []entity.NftWithMetadata{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}

	return items[start:end]
}

func PageCount(total, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	return (total + perPage - 1) / perPage
}

// Holders groups nfts by owner, most NFTs first. Listed NFTs are skipped unless includeListed.
func Holders(nfts []entity.Nft, includeListed bool) []entity.Holder {
	holders := make([]entity.Holder, 0)
	index := make(map[string]int)

	for _, nft := range nfts {
		if !includeListed && nft.IsListed() {
			continue
		}
		idx, ok := index[nft.AccountId]
		if !ok {
			idx = len(holders)
			index[nft.AccountId] = idx
			holders = append(holders, entity.Holder{AccountId: nft.AccountId, SerialNumbers: []int64{}})
		}
		holders[idx].Count++
		holders[idx].SerialNumbers = append(holders[idx].SerialNumbers, nft.SerialNumber)
	}

	sort.SliceStable(holders, func(i, j int) bool {
		return holders[i].Count > holders[j].Count
	})

	return holders
}
