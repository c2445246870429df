package leads

import "strings"

const brazilCountryCode = "55"

// validAreaCodes holds the Brazilian DDD area codes.
var validAreaCodes = map[string]bool{
	"11": true, "12": true, "13": true, "14": true, "15": true, "16": true, "17": true, "18": true, "19": true,
	"21": true, "22": true, "24": true,
	"27": true, "28": true,
	"31": true, "32": true, "33": true, "34": true, "35": true, "37": true, "38": true,
	"41": true, "42": true, "43": true, "44": true, "45": true, "46": true,
	"47": true, "48": true, "49": true,
	"51": true, "53": true, "54": true, "55": true,
	"61": true,
	"62": true, "64": true,
	"63": true,
	"65": true, "66": true,
	"67": true,
	"68": true,
	"69": true,
	"71": true, "73": true, "74": true, "75": true, "77": true,
	"79": true,
	"81": true, "87": true,
	"82": true,
	"83": true,
	"84": true,
	"85": true, "88": true,
	"86": true, "89": true,
	"91": true, "93": true, "94": true,
	"92": true, "97": true,
	"95": true,
	"96": true,
	"98": true, "99": true,
}

// NormalizePhone strips formatting and prefixes the country code to local
// eleven-digit mobile numbers.
func NormalizePhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if len(digits) == 11 {
		return brazilCountryCode + digits
	}
	return digits
}

// IsMobileNumber reports whether a normalized number is a Brazilian mobile
// number: country code, known area code, nine digits starting with 9.
func IsMobileNumber(phone string) bool {
	if len(phone) != 13 || !strings.HasPrefix(phone, brazilCountryCode) {
		return false
	}
	areaCode, subscriber := phone[2:4], phone[4:]
	return validAreaCodes[areaCode] && subscriber[0] == '9'
}
