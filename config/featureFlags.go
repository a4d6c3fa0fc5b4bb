package config

import (
	"os"
	"strings"
)

// StrictSettlementValidation selects the validation policy used by the
// settlement engine when the request does not specify one:
// strict blocks export on any finding, permissive reports findings as
// advisory and still emits best-effort values.
//
// Set via env:
// - LIQUIDACION_STRICT=false to default to permissive (strict otherwise)
func StrictSettlementValidation() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("LIQUIDACION_STRICT")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
