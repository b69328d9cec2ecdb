// Package factory provides a generic registry used to build pluggable
// implementations (metrics sinks, smoothers, boosters) from a type name and a
// raw configuration map.
package factory
