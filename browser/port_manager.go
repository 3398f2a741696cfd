package browser

import (
	"fmt"
	"sync"
)

// PortManager hands out chromedriver ports to concurrent selenium sessions
type PortManager struct {
	basePort  int
	portRange int
	inUse     map[int]bool
	mutex     sync.Mutex
}

// NewPortManager creates a port manager for [basePort, basePort+portRange).
func NewPortManager(basePort, portRange int) *PortManager {
	inUse := make(map[int]bool, portRange)
	for i := 0; i < portRange; i++ {
		inUse[basePort+i] = false
	}

	return &PortManager{
		basePort:  basePort,
		portRange: portRange,
		inUse:     inUse,
	}
}

// GetPort allocates the lowest free port
func (pm *PortManager) GetPort() (int, error) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	for i := 0; i < pm.portRange; i++ {
		port := pm.basePort + i
		if !pm.inUse[port] {
			pm.inUse[port] = true
			return port, nil
		}
	}

	return 0, fmt.Errorf("no available ports in range %d-%d", pm.basePort, pm.basePort+pm.portRange-1)
}

// ReleasePort returns a port to the pool. Ports outside the range are ignored.
func (pm *PortManager) ReleasePort(port int) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if _, ok := pm.inUse[port]; ok {
		pm.inUse[port] = false
	}
}
