package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// WebhookPayload is a decoded webhook body. Providers send the donation
// either flat or nested under "data", with several field name variants.
type WebhookPayload map[string]interface{}

// fieldExtractor pulls one candidate value out of a payload
type fieldExtractor func(p WebhookPayload) (interface{}, bool)

// field walks nested objects along keys and reports a value only when it is
// set: empty strings, zero numbers, false and null count as missing.
func field(keys ...string) fieldExtractor {
	return func(p WebhookPayload) (interface{}, bool) {
		var current interface{} = map[string]interface{}(p)
		for _, key := range keys {
			obj, ok := current.(map[string]interface{})
			if !ok {
				return nil, false
			}
			current = obj[key]
		}
		return current, isSet(current)
	}
}

// Extractors in priority order, the first set value wins
var (
	tokenFields = []fieldExtractor{
		field("verification_token"),
		field("verificationToken"),
		field("data", "verification_token"),
	}
	amountFields = []fieldExtractor{
		field("amount"),
		field("data", "amount"),
		field("data", "tier", "amount"),
		field("data", "total"),
	}
	currencyFields = []fieldExtractor{
		field("currency"),
		field("data", "currency"),
		field("data", "tier", "currency"),
	}
	nameFields = []fieldExtractor{
		field("from_name"),
		field("name"),
		field("data", "from_name"),
	}
	messageFields = []fieldExtractor{
		field("message"),
		field("data", "message"),
	}
	timestampFields = []fieldExtractor{
		field("timestamp"),
		field("data", "timestamp"),
		field("data", "created_at"),
	}
	transactionFields = []fieldExtractor{
		field("kofi_transaction_id"),
		field("message_id"),
		field("data", "kofi_transaction_id"),
	}
)

// firstString returns the first set value as a string, or def
func (p WebhookPayload) firstString(extractors []fieldExtractor, def string) string {
	for _, extract := range extractors {
		if v, ok := extract(p); ok {
			return stringify(v)
		}
	}
	return def
}

func isSet(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// ParseAmount reads an amount permissively: every character other than a
// digit or a dot is dropped and the longest leading decimal number is
// parsed. Anything unparsable or non-positive yields zero.
func ParseAmount(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	// Longest prefix of the form digits[.digits]
	end, seenDot, digits := 0, false, 0
	for end < len(cleaned) {
		c := cleaned[end]
		if c == '.' {
			if seenDot {
				break
			}
			seenDot = true
		} else {
			digits++
		}
		end++
	}
	if digits == 0 {
		return decimal.Zero
	}

	number := strings.TrimSuffix(cleaned[:end], ".")
	if strings.HasPrefix(number, ".") {
		number = "0" + number
	}

	amount, err := decimal.NewFromString(number)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero
	}
	return amount
}
