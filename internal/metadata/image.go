package metadata

import (
	"strings"

	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/ZilDuck/hedera-nft-explorer/internal/helper"
)

const thumbnailQuery = "?class=thumbnail"

// ImageUrl derives a displayable url for the asset described by md, served
// through gateway. Returns an empty string when md references no asset.
func ImageUrl(md entity.Metadata, gateway string) string {
	if md == nil {
		return ""
	}

	var src string
	if image := md.Image(); image != "" {
		switch {
		case helper.IsIpfs(image):
			src = gateway + helper.StripIpfsScheme(image)
		case helper.IsHttp(image):
			cid := helper.FindCid(helper.CidFromUrl(image))
			if cid == "" {
				return image
			}
			src = gateway + cid
		default:
			cid := helper.FindCid(image)
			if cid == "" {
				return ""
			}
			src = gateway + cid
		}
	} else if cid := helper.FindCid(cidFieldLabel(md.CID())); cid != "" {
		src = gateway + cid
	} else {
		return ""
	}

	if !md.IsVideo() {
		src += thumbnailQuery
	}

	return src
}

// cidFieldLabel reads the CID field, which early collections filled with a
// subdomain gateway url rather than a bare CID.
func cidFieldLabel(cid string) string {
	return strings.Split(strings.TrimPrefix(cid, "https://"), ".")[0]
}
