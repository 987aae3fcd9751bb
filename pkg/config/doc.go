// Package config defines the gateway's YAML configuration tree: loading,
// ${ENV} secret expansion, defaulting, and startup validation.
package config
