// Package producer defines the uniform analysis contract and the built-in
// producers for each dimension.
//
// Producer exposes a single Analyze(ctx, request) operation returning a
// sub-score plus notes, or an error. The orchestration core treats every
// producer identically regardless of its data source.
//
// Built-in producers, one per dimension:
//   - research (research.go): policy sentiment lookup from a JSON dataset
//   - permitting (permitting.go): jurisdiction permit-rule matching with
//     exact → city-level → DEFAULT precedence
//   - design (design.go): system sizing and yield estimation from roof area
//     and irradiance, read from a CSV dataset or a Prometheus-format
//     weather-station endpoint
//
// Factory: New(config.ProducerSpec) returns the correct Producer, loading
// dataset files eagerly so misconfiguration fails before any evaluation runs.
// Registry collects (dimension, producer, timeout) entries and iterates them
// in canonical dimension order.
package producer
