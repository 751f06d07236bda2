package domain

const (
	// IdentifierSeparator splits a composite basket identifier into segments.
	IdentifierSeparator = "-"

	// MinIdentifierSegments is tag + at least one key segment + timestamp.
	MinIdentifierSegments = 3

	// DefaultStatusCode is assumed when the gateway omits err_code.
	DefaultStatusCode = "000"

	// TransactionRefUnavailable is stored when the gateway sends no transaction id.
	TransactionRefUnavailable = "N/A"

	// DigestSeparator joins the fields of the canonical verification string.
	DigestSeparator = "|"
)

// SuccessStatusCodes are the gateway codes that denote a completed payment.
var SuccessStatusCodes = []string{"000", "00"}

// IsSuccessStatus reports whether code denotes a completed payment.
func IsSuccessStatus(code string) bool {
	for _, c := range SuccessStatusCodes {
		if code == c {
			return true
		}
	}
	return false
}
