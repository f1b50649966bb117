package boundaryhash

import (
	"math/big"
)

// ValidLEI reports whether s is a syntactically well-formed LEI (18
// alphanumerics + 2 check digits, validated via the full L1-EID-05 regex
// elsewhere) that also passes the ISO/IEC 7064 MOD 97-10 checksum over
// all 20 characters, mapping letters A=10..Z=35.
//
// MOD 97-10 requires the numeric string formed by the letter/digit
// expansion, taken mod 97, to equal 1.
func ValidLEI(lei string) bool {
	if len(lei) != 20 {
		return false
	}
	numeric := make([]byte, 0, 40)
	for _, r := range lei {
		switch {
		case r >= '0' && r <= '9':
			numeric = append(numeric, byte(r))
		case r >= 'A' && r <= 'Z':
			v := int(r-'A') + 10
			numeric = append(numeric, []byte(itoa(v))...)
		default:
			return false
		}
	}
	n := new(big.Int)
	if _, ok := n.SetString(string(numeric), 10); !ok {
		return false
	}
	mod := new(big.Int).Mod(n, big.NewInt(97))
	return mod.Int64() == 1
}

func itoa(v int) string {
	if v < 10 {
		return string(rune('0' + v))
	}
	return string(rune('0'+v/10)) + string(rune('0'+v%10))
}

// ValidGLN reports whether gln (13 digits, shape validated elsewhere by
// L1-EID-07's regex) passes the GS1 mod-10 checksum: weights 3 and 1
// alternating from the rightmost data digit (the 13th digit is the check
// digit itself).
func ValidGLN(gln string) bool {
	if len(gln) != 13 {
		return false
	}
	digits := make([]int, 13)
	for i, r := range gln {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
	}
	checkDigit := digits[12]
	sum := 0
	weight := 3
	for i := 11; i >= 0; i-- {
		sum += digits[i] * weight
		if weight == 3 {
			weight = 1
		} else {
			weight = 3
		}
	}
	computed := (10 - (sum % 10)) % 10
	return computed == checkDigit
}
