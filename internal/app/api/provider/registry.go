// Package provider is the registry of model backends. Backend packages
// register themselves from init, and the server picks one by name.
package provider

import (
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"whisper-web/internal/app/errors"
	"whisper-web/internal/app/model"
	"whisper-web/internal/config"
)

// BackendCreator builds a backend from the model configuration. It must not
// load the model; loading happens on first use through model.Cache.
type BackendCreator func(cfg config.ModelConfig, logger *zap.Logger) (model.Backend, error)

// providerRegistry stores backend creation functions
var (
	providerRegistry = make(map[string]BackendCreator)
	registryMutex    sync.RWMutex
)

// RegisterProvider registers a backend creator under name
func RegisterProvider(name string, creator BackendCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	providerRegistry[name] = creator
}

// GetProviderCreator returns the creator function for a backend name
func GetProviderCreator(name string) (BackendCreator, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	creator, ok := providerRegistry[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrBackendNotFound, "backend %q is not registered (available: %v)", name, listLocked())
	}
	return creator, nil
}

// ListRegisteredProviders returns all registered backend names, sorted
func ListRegisteredProviders() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	return listLocked()
}

func listLocked() []string {
	names := lo.Keys(providerRegistry)
	sort.Strings(names)
	return names
}

// CreateBackend builds the backend selected by cfg.Backend.
func CreateBackend(cfg config.ModelConfig, logger *zap.Logger) (model.Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	creator, err := GetProviderCreator(cfg.Backend)
	if err != nil {
		return nil, err
	}

	backend, err := creator(cfg, logger.With(zap.String("backend", cfg.Backend)))
	if err != nil {
		return nil, errors.Wrapf(err, "create %s backend", cfg.Backend)
	}
	return backend, nil
}
