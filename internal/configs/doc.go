// Package configs owns the durable settings of the tunnelrelay agent.
//
// # Settings
//
// [Settings] is the single persisted aggregate, stored as JSON in
// appSettings.json. It records the local redirection URL, the relay identity
// (hybrid connection URL, name and key name), the sealed relay shared key,
// the enabled plugins, per-plugin key/value settings, and a schema version.
//
// A [Store] holds the current aggregate for one settings file. The process
// entry point creates it with [LoadOrDefault] and hands it to commands:
//
//	store, err := configs.LoadOrDefault(path, protector, log)
//	if err := store.SetSharedKey(key); err != nil { ... }
//	if err := store.Save(); err != nil { ... }
//
// Nothing is saved implicitly. [Store.Logout] and [Store.Import] replace the
// whole aggregate; the previous one, sealed key included, is discarded.
//
// # Shared Key
//
// The shared key is sealed with a protect.Protector before it is stored and
// is never written in plaintext to the settings file. [Store.Export] is the
// one exception: it produces a transfer string with the key unsealed so the
// settings can be moved to another machine, where [Store.Import] seals it
// again.
//
// # Schema Versions
//
// New settings are written with version 2. Files with an older version lose
// their relay URL, key name and sealed key on load. The version is not bumped
// by the load itself; setting the relay identity or key stamps version 2.
//
// # Preferences
//
// config.toml in the user config directory holds CLI preferences: the
// settings file path, the protector kind and scope, and a generated
// installation id used as machine identity on hosts without a machine-id.
package configs
