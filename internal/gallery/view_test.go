package gallery

import (
	"testing"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/stretchr/testify/assert"
)

func withAttributes(serial int64, attrs ...string) entity.NftWithMetadata {
	raw := make([]interface{}, 0)
	for i := 0; i+1 < len(attrs); i += 2 {
		raw = append(raw, map[string]interface{}{"trait_type": attrs[i], "value": attrs[i+1]})
	}
	nft := entity.NewNftWithMetadata(entity.Nft{TokenId: "0.0.1", SerialNumber: serial}, nil)
	nft.MetadataObj = entity.Metadata{"attributes": raw}
	return nft
}

func TestProperties_FirstSeenOrder(t *testing.T) {
	nfts := []entity.NftWithMetadata{
		withAttributes(1, "Eyes", "Laser", "Hat", "Cap"),
		withAttributes(2, "Eyes", "Sleepy", "Background", "Blue"),
		withAttributes(3, "Eyes", "Laser", "Hat", "Crown"),
		entity.NewNftWithMetadata(entity.Nft{SerialNumber: 4}, nil),
	}

	assert.Equal(t, []Property{
		{TraitType: "Eyes", Values: []string{"Laser", "Sleepy"}},
		{TraitType: "Hat", Values: []string{"Cap", "Crown"}},
		{TraitType: "Background", Values: []string{"Blue"}},
	}, Properties(nfts))
}

func TestFilter(t *testing.T) {
	nfts := []entity.NftWithMetadata{
		withAttributes(1, "Eyes", "Laser", "Hat", "Cap"),
		withAttributes(2, "Eyes", "Sleepy", "Hat", "Cap"),
		withAttributes(3, "Eyes", "Laser", "Hat", "Crown"),
		withAttributes(4, "Eyes", "Laser"),
	}

	serials := func(nfts []entity.NftWithMetadata) []int64 {
		s := make([]int64, 0, len(nfts))
		for _, nft := range nfts {
			s = append(s, nft.SerialNumber)
		}
		return s
	}

	assert.Equal(t, []int64{1, 2, 3, 4}, serials(Filter(nfts, nil)))
	assert.Equal(t, []int64{1, 2, 3, 4}, serials(Filter(nfts, map[string][]string{"Hat": {}})))
	assert.Equal(t, []int64{1, 3, 4}, serials(Filter(nfts, map[string][]string{"Eyes": {"Laser"}})))
	assert.Equal(t, []int64{1, 2, 3}, serials(Filter(nfts, map[string][]string{"Hat": {"Cap", "Crown"}})))
	assert.Equal(t, []int64{1}, serials(Filter(nfts, map[string][]string{"Eyes": {"Laser"}, "Hat": {"Cap"}})))
	assert.Empty(t, Filter(nfts, map[string][]string{"Mouth": {"Grin"}}))
}

func TestPage(t *testing.T) {
	nfts := items("0.0.1", 30)

	assert.Len(t, Page(nfts, 1, 12), 12)
	assert.Len(t, Page(nfts, 3, 12), 6)
	assert.Equal(t, int64(13), Page(nfts, 2, 12)[0].SerialNumber)
	assert.Empty(t, Page(nfts, 4, 12))
	assert.Empty(t, Page(nfts, 0, 12))
	assert.Len(t, Page(nfts, 1, 0), DefaultPerPage)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 12))
	assert.Equal(t, 1, PageCount(12, 12))
	assert.Equal(t, 3, PageCount(25, 12))
	assert.Equal(t, 2, PageCount(13, 0))
}

func TestHolders(t *testing.T) {
	listed := "0.0.500"
	nfts := []entity.Nft{
		{SerialNumber: 1, AccountId: "0.0.a"},
		{SerialNumber: 2, AccountId: "0.0.b"},
		{SerialNumber: 3, AccountId: "0.0.b"},
		{SerialNumber: 4, AccountId: "0.0.c"},
		{SerialNumber: 5, AccountId: "0.0.b", Spender: &listed},
		{SerialNumber: 6, AccountId: "0.0.c"},
	}

	assert.Equal(t, []entity.Holder{
		{AccountId: "0.0.b", Count: 3, SerialNumbers: []int64{2, 3, 5}},
		{AccountId: "0.0.c", Count: 2, SerialNumbers: []int64{4, 6}},
		{AccountId: "0.0.a", Count: 1, SerialNumbers: []int64{1}},
	}, Holders(nfts, true))

	assert.Equal(t, []entity.Holder{
		{AccountId: "0.0.b", Count: 2, SerialNumbers: []int64{2, 3}},
		{AccountId: "0.0.c", Count: 2, SerialNumbers: []int64{4, 6}},
		{AccountId: "0.0.a", Count: 1, SerialNumbers: []int64{1}},
	}, Holders(nfts, false))
}

func TestParseSelection(t *testing.T) {
	selected, err := ParseSelection([]string{"Eyes=Laser", "Eyes = Sleepy", "Hat=Top=Hat"})
	assert.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"Eyes": {"Laser", "Sleepy"},
		"Hat":  {"Top=Hat"},
	}, selected)

	_, err = ParseSelection([]string{"Eyes"})
	assert.Error(t, err)
	_, err = ParseSelection([]string{"=Laser"})
	assert.Error(t, err)
}
