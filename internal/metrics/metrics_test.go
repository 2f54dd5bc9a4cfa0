package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "error", StatusLabel(0, errors.New("dial tcp: refused")))
	assert.Equal(t, "5xx", StatusLabel(503, nil))
	assert.Equal(t, "4xx", StatusLabel(404, nil))
	assert.Equal(t, "2xx", StatusLabel(200, nil))
}

func TestGatewayFetchesCounter(t *testing.T) {
	before := testutil.ToFloat64(GatewayFetches.WithLabelValues("https://test.gateway/ipfs/", "success"))
	GatewayFetches.WithLabelValues("https://test.gateway/ipfs/", "success").Inc()
	after := testutil.ToFloat64(GatewayFetches.WithLabelValues("https://test.gateway/ipfs/", "success"))

	assert.Equal(t, before+1, after)
}
