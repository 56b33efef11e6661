package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/resumeatlas/ResumeAPI/internal/config"
)

var once sync.Once
var pooledClient *http.Client

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// GetPooledClient returns a shared client that reuses connections to the
// inference endpoint across jobs.
func GetPooledClient() *http.Client {
	once.Do(func() {
		pooledClient = &http.Client{
			Transport: customTransport,
			Timeout:   config.InferenceTimeout,
		}
	})
	return pooledClient
}
