package transport

import (
	"github.com/hansgunawan/portfolio/internal/domain/ports"
	"github.com/hansgunawan/portfolio/internal/domain/usecases"
)

// Services are the use cases both transports delegate to.
type Services struct {
	Relay   *usecases.ChatRelay
	Context ports.ContextSource
	Contact *usecases.ContactService
}

// Health reports the server status.
func (s Services) Health() HealthResponse {
	return HealthResponse{Status: "ok", Provider: s.Relay.Provider()}
}
