//go:build tools
// +build tools

// Package tools tracks tool dependencies in go.mod.
package tools

import (
	_ "gotest.tools/gotestsum"
)
