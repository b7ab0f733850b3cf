// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"github.com/treerun/treerun/internal/config"
)

// BuildRegistry creates the registry with the native and virtual runtimes.
// The native runtime uses cfg.Shell when set.
func BuildRegistry(cfg *config.Config) *Registry {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	registry := NewRegistry()
	registry.Register(RuntimeTypeNative, NewNativeRuntime(cfg.Shell))
	registry.Register(RuntimeTypeVirtual, NewVirtualRuntime())
	return registry
}

// TypeForMode converts the settings value to a RuntimeType. Unknown modes
// fall back to native.
func TypeForMode(mode config.RuntimeMode) RuntimeType {
	if mode == config.RuntimeVirtual {
		return RuntimeTypeVirtual
	}
	return RuntimeTypeNative
}
