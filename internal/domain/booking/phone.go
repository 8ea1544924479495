package booking

import "strings"

// PhoneDigits returns only the digits of s.
func PhoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone reformats a phone number as it is being typed:
// up to 3 digits are left as is, up to 6 become "(XXX) XXX" and
// longer input becomes "(XXX) XXX-XXXX". Digits past the tenth are dropped.
func FormatPhone(s string) string {
	d := PhoneDigits(s)
	if len(d) > 10 {
		d = d[:10]
	}
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return "(" + d[:3] + ") " + d[3:]
	default:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	}
}
