package service

import (
	"net/url"
	"strings"
)

// BuildSuccessRedirect returns the deep link that reopens the client app
// after a completed payment.
func BuildSuccessRedirect(scheme, basketID, transactionID string) string {
	return buildDeepLink(scheme, "payment/success", [][2]string{
		{"basket_id", basketID},
		{"transaction_id", transactionID},
	})
}

// BuildFailureRedirect returns the deep link that reopens the client app
// after a failed or cancelled payment.
func BuildFailureRedirect(scheme, basketID, errCode, errMsg string) string {
	return buildDeepLink(scheme, "payment/failure", [][2]string{
		{"basket_id", basketID},
		{"err_code", errCode},
		{"err_msg", errMsg},
	})
}

// buildDeepLink keeps parameter order stable, which url.Values.Encode does not.
func buildDeepLink(scheme, path string, params [][2]string) string {
	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(path)
	for i, p := range params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(escapeComponent(p[1]))
	}
	return b.String()
}

// escapeComponent percent-encodes v, spaces included.
func escapeComponent(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
