package service

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// Hub owns the registered services and drives their lifecycle
// Services start in registration order and stop in reverse
type Hub struct {
	mu       sync.Mutex
	services []Service
	byName   map[string]Service
	started  int // services[:started] completed Start
}

// NewHub creates an empty service hub
func NewHub() *Hub {
	return &Hub{byName: make(map[string]Service)}
}

// Register adds a service; names must be unique
func (h *Hub) Register(svc Service) error {
	if svc == nil {
		return fmt.Errorf("service: nil service")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.byName[name]; exists {
		return fmt.Errorf("service already registered: %s", name)
	}
	h.byName[name] = svc
	h.services = append(h.services, svc)
	return nil
}

// Get retrieves a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	svc, ok := h.byName[name]
	return svc, ok
}

// Names returns registered service names in start order
func (h *Hub) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, len(h.services))
	for i, svc := range h.services {
		names[i] = svc.Name()
	}
	return names
}

// StartAll starts every service not yet started
// On failure, already-started services are stopped in reverse order
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for h.started < len(h.services) {
		svc := h.services[h.started]
		if err := svc.Start(); err != nil {
			h.stopLocked()
			return fmt.Errorf("service %s start failed: %w", svc.Name(), err)
		}
		h.started++
	}
	return nil
}

// StopAll stops started services in reverse order
// Every service gets Stop called; errors are joined
func (h *Hub) StopAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopLocked()
}

func (h *Hub) stopLocked() error {
	var errs []error
	for ; h.started > 0; h.started-- {
		svc := h.services[h.started-1]
		if err := svc.Stop(); err != nil {
			log.Printf("service %s stop: %v", svc.Name(), err)
			errs = append(errs, fmt.Errorf("service %s: %w", svc.Name(), err))
		}
	}
	return errors.Join(errs...)
}
