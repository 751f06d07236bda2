package entity

import "strings"

// NotificationField names a logical notification field together with the
// ordered list of keys the gateway may use for it.
type NotificationField struct {
	Name    string
	Aliases []string
}

// Fields accepted from the gateway, lower-snake first.
var (
	FieldBasketID       = NotificationField{Name: "basket_id", Aliases: []string{"basket_id", "BASKET_ID"}}
	FieldStatusCode     = NotificationField{Name: "err_code", Aliases: []string{"err_code", "ERR_CODE"}}
	FieldErrorMessage   = NotificationField{Name: "err_msg", Aliases: []string{"err_msg", "ERR_MSG"}}
	FieldTransactionID  = NotificationField{Name: "transaction_id", Aliases: []string{"transaction_id", "TRANSACTION_ID"}}
	FieldValidationHash = NotificationField{Name: "validation_hash", Aliases: []string{"validation_hash", "VALIDATION_HASH"}}
	FieldEmailAddress   = NotificationField{Name: "email_address", Aliases: []string{"email_address", "EMAIL_ADDRESS"}}
)

// Notification is the transient set of key/value pairs posted by the gateway.
type Notification map[string]string

// Lookup resolves a logical field by trying its aliases in order.
// Blank values are treated as absent.
func (n Notification) Lookup(field NotificationField) (string, bool) {
	for _, alias := range field.Aliases {
		if v, ok := n[alias]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// Value resolves a logical field, returning fallback when absent.
func (n Notification) Value(field NotificationField, fallback string) string {
	if v, ok := n.Lookup(field); ok {
		return v
	}
	return fallback
}
