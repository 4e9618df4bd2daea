package ticket

import (
	"errors"
	"strconv"
	"strings"
)

var ErrMalformedPayload = errors.New("malformed ticket payload")

// Encode renders a registration identifier as its scannable payload. The
// payload is the identifier itself in canonical decimal form; binding a scan
// to the right event happens at check-in time, not inside the code.
func Encode(registrationID int64) string {
	return strconv.FormatInt(registrationID, 10)
}

// Decode parses a scanned payload back into a registration identifier.
// Anything that is not a positive decimal integer is malformed.
func Decode(payload string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrMalformedPayload
	}
	return id, nil
}
