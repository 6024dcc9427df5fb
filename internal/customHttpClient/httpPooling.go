package customHttpClient

import (
	"net/http"

	"github.com/akolanti/DocQA/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// PooledClient is shared by the OpenAI clients so repeated provider
// calls reuse connections instead of paying the handshake every time.
func PooledClient() *http.Client {
	return &http.Client{Transport: customTransport}
}
