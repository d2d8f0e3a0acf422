// Package config loads and watches the sunscout configuration file.
//
// Load(path) reads the YAML file, applies defaults (10s producer timeout,
// GO threshold 70, weights 0.4/0.3/0.3, port 8080), then validates required
// fields and structural constraints: producer dimensions must be known and
// unique, every configured dimension needs a positive weight, and weights
// must sum to 1.0. Validation errors here are the system's only hard
// failures — a valid config can never make an evaluation raise.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create pattern
// used by atomic-save editors by re-adding the watch after the event.
package config
