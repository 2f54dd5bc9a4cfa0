package helper

import (
	"net/url"
	"regexp"
	"strings"
)

const IpfsScheme = "ipfs://"

var cidRegex = regexp.MustCompile("((Qm[1-9A-HJ-NP-Za-km-z]{44}|b[a-z2-7]{58,})[^?#]*)")

func IsHttp(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

func IsIpfs(uri string) bool {
	return strings.HasPrefix(uri, IpfsScheme)
}

// FindCid returns the first CIDv0/CIDv1 found in uri along with any path that follows it.
func FindCid(uri string) string {
	parts := cidRegex.FindStringSubmatch(uri)
	if len(parts) >= 2 {
		return parts[1]
	}

	return ""
}

// CidFromUrl extracts the content address from a gateway URL: either the
// path after /ipfs/ or the subdomain of a subdomain gateway.
func CidFromUrl(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}

	if strings.HasPrefix(u.Path, "/ipfs") {
		return strings.TrimPrefix(strings.TrimPrefix(u.Path, "/ipfs"), "/")
	}

	return strings.Split(u.Hostname(), ".")[0]
}

func StripIpfsScheme(uri string) string {
	return strings.TrimPrefix(uri, IpfsScheme)
}
