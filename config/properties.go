package config

import (
	"github.com/antithesishq/antithesis-sdk-go/assert"
)

// Details is the context attached to a deployment property.
type Details = map[string]interface{}

var antithesisEnabled bool

// SetAntithesisMode turns property reporting on. Load calls it from the
// ANTITHESIS setting; without it every Assert* is a no-op.
func SetAntithesisMode(enabled bool) {
	antithesisEnabled = enabled
}

func IsAntithesisEnabled() bool {
	return antithesisEnabled
}

// AssertAlways reports a deployment invariant, e.g. argument order.
func AssertAlways(condition bool, message string, details Details) {
	if antithesisEnabled {
		assert.Always(condition, message, details)
	}
}

// AssertSometimes reports an outcome that must occur in at least one run,
// such as a successful explorer verification.
func AssertSometimes(condition bool, message string, details Details) {
	if antithesisEnabled {
		assert.Sometimes(condition, message, details)
	}
}

func AssertReachable(message string, details Details) {
	if antithesisEnabled {
		assert.Reachable(message, details)
	}
}
