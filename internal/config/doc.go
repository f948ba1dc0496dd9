// Package config loads the quickbar configuration.
//
// Configuration is resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command line flags      │  ← Highest priority (applied by cmd)
//	├─────────────────────────────┤
//	│  3. Environment variables   │  ← QUICKBAR_BRIDGE_ADDR, ...
//	├─────────────────────────────┤
//	│  2. Config file             │  ← config.toml or config.yaml
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// A file only overrides the keys it sets. Environment variables map to
// setting paths by section and camel-cased key, so QUICKBAR_BRIDGE_CALL_TIMEOUT
// sets bridge.callTimeout.
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
