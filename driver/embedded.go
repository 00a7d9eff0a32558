package driver

import (
	"sync"

	"goDBDriver/api"
	"goDBDriver/internal/server"
)

var embedded struct {
	once    sync.Once
	backend api.Backend
	err     error
}

// embeddedBackend returns the engine shared by every embedded session of
// the process.
func embeddedBackend() (api.Backend, error) {
	embedded.once.Do(func() {
		embedded.backend, embedded.err = server.NewEmbedded()
	})
	return embedded.backend, embedded.err
}
