//go:build tools

package internal

// Pins the mockgen version used by the go:generate directives.
import (
	_ "github.com/golang/mock/mockgen"
)
