//go:build tools

package tools

import (
	// Used to regenerate the mocks under internal/mock.
	_ "go.uber.org/mock/mockgen"
)
