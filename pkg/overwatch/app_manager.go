package overwatch

import (
	"sort"
	"sync"

	"github.com/jxo-me/ddnsync/core/service"
)

// ServiceCallback is a service notify it's run loop finished.
// the first parameter is the service type,
// the second parameter is the service name,
// the third parameter is an optional error if the service failed
type ServiceCallback func(string, string, error)

// AppManager is the default implementation of over-watched service management
type AppManager struct {
	mu       sync.Mutex
	services map[string]service.IDDNSService
	callback ServiceCallback
}

// NewAppManager creates a new over-watched manager
func NewAppManager(callback ServiceCallback) Manager {
	return &AppManager{services: make(map[string]service.IDDNSService), callback: callback}
}

// Add takes in a new service to manage.
// It stops the service if it already exists in the manager and is running
// It then starts the newly added service
func (m *AppManager) Add(svc service.IDDNSService) {
	m.mu.Lock()
	currentService, ok := m.services[svc.String()]
	if ok && currentService.Hash() == svc.Hash() {
		m.mu.Unlock()
		return // the exact same service, no changes, so move along
	}
	m.services[svc.String()] = svc
	m.mu.Unlock()

	if ok {
		_ = currentService.Stop() // shutdown the old loop since a new one is starting
	}
	//start the service!
	go m.serviceRun(svc)
}

// Remove shutdowns the service by name and removes it from its current management list
func (m *AppManager) Remove(name string) {
	m.mu.Lock()
	currentService, ok := m.services[name]
	delete(m.services, name)
	m.mu.Unlock()

	if ok {
		_ = currentService.Stop()
	}
}

// Services returns all the current Services being managed, ordered by name
func (m *AppManager) Services() []service.IDDNSService {
	m.mu.Lock()
	defer m.mu.Unlock()
	values := make([]service.IDDNSService, 0, len(m.services))
	for _, value := range m.services {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].String() < values[j].String() })
	return values
}

func (m *AppManager) serviceRun(svc service.IDDNSService) {
	err := svc.Start()
	if m.callback != nil {
		m.callback("ddns", svc.String(), err)
	}
}
