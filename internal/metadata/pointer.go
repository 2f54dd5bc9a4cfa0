package metadata

import (
	"encoding/base64"
	"errors"
	"unicode/utf8"

	"github.com/ZilDuck/hedera-nft-explorer/internal/helper"
)

var (
	ErrInvalidMetadata = errors.New("NFT metadata is invalid")
)

// minPointerLength is the shortest decoded pointer worth resolving.
const minPointerLength = 21

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Decode turns the base64 metadata field of an NFT into the uri it points to.
func Decode(pointer string) (string, error) {
	if pointer == "" {
		return "", ErrInvalidMetadata
	}

	for _, enc := range encodings {
		decoded, err := enc.DecodeString(pointer)
		if err != nil {
			continue
		}
		uri := string(decoded)
		if !utf8.ValidString(uri) || utf8.RuneCountInString(uri) < minPointerLength {
			return "", ErrInvalidMetadata
		}
		return uri, nil
	}

	return "", ErrInvalidMetadata
}

// Normalize prefixes bare content identifiers with ipfs://.
func Normalize(uri string) string {
	if helper.IsHttp(uri) || helper.IsIpfs(uri) {
		return uri
	}

	return helper.IpfsScheme + uri
}

// GatewayUrl returns the url to request on the given attempt. Content
// addresses rotate through the gateways, attempt N using gateway N mod len.
func GatewayUrl(gateways []string, uri string, attempt int) string {
	if helper.IsHttp(uri) || len(gateways) == 0 {
		return uri
	}

	return gateways[attempt%len(gateways)] + helper.StripIpfsScheme(uri)
}
