package hindi

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnsupportedMagnitude is returned for numbers outside the supported
// range or decimals that have no lexicalized Hindi form.
var ErrUnsupportedMagnitude = errors.New("hindi: unsupported magnitude")

// MaxNumber is the largest supported value (ek crore).
const MaxNumber = 10_000_000

const (
	hazaar = 1_000
	lakh   = 100_000
	crore  = 10_000_000
)

// Hindi numerals 0-99 are irregular; there is no compositional
// "twenty-one" pattern, so the whole range is a lookup table.
var ones = [100]string{
	"zero", "ek", "do", "teen", "chaar",
	"paanch", "chhe", "saat", "aath", "nau",
	"das", "gyaarah", "baarah", "terah", "chaudah",
	"pandrah", "solah", "satrah", "athaarah", "unnees",
	"bees", "ikkees", "baaees", "teyees", "chaubees",
	"pachchees", "chhabbees", "sattaaees", "attaaees", "untees",
	"tees", "ikattees", "battees", "taintees", "chauntees",
	"paintees", "chhatees", "saintees", "adtees", "untaalees",
	"chaalees", "iktaalees", "bayaalees", "taintaalees", "chavaalees",
	"paintaalees", "chhiyaalees", "saintaalees", "adtaalees", "unchaas",
	"pachaas", "ikyaavan", "baavan", "tirpan", "chauvan",
	"pachpan", "chhappan", "sattaavan", "athaavan", "unsath",
	"saath", "iksath", "baasath", "tirsath", "chaunsath",
	"painsath", "chhiyaasath", "sadsath", "adsath", "unhattar",
	"sattar", "ikhattar", "bahattar", "tihattar", "chauhattar",
	"pachhattar", "chhihattar", "satattar", "athattar", "unaasi",
	"assi", "ikyaasi", "bayaasi", "tiraasi", "chauraasi",
	"pachaasi", "chhiyaasi", "sataasi", "athaasi", "navaasi",
	"nabbe", "ikyaanbe", "baanbe", "tiraanbe", "chauraanbe",
	"pachaanbe", "chhiyaanbe", "sattaanbe", "athaanbe", "ninyanbe",
}

// Number renders an integer as spoken Hindi words.
// Supported domain is 0..MaxNumber inclusive.
func Number(n int64) (string, error) {
	if n < 0 || n > MaxNumber {
		return "", ErrUnsupportedMagnitude
	}
	return number(n), nil
}

func number(n int64) string {
	if n < 100 {
		return ones[n]
	}
	// Half-thousand quantities use irregular forms and take precedence
	// over the positional decomposition: 1500 is "dedh hazaar", never
	// "ek hazaar paanch sau".
	if n >= hazaar && n%hazaar == 500 {
		k := n / hazaar
		switch k {
		case 1:
			return "dedh hazaar"
		case 2:
			return "dhaai hazaar"
		}
		return "saadhe " + number(k) + " hazaar"
	}
	switch {
	case n >= crore:
		return group(n, crore, "crore")
	case n >= lakh:
		return group(n, lakh, "lakh")
	case n >= hazaar:
		return group(n, hazaar, "hazaar")
	default:
		return group(n, 100, "sau")
	}
}

func group(n, unit int64, word string) string {
	head := number(n/unit) + " " + word
	rem := n % unit
	if rem == 0 {
		return head
	}
	return head + " " + number(rem)
}

// Numeral converts a digit token as it appears in text: grouping commas
// are stripped ("36,000" == "36000") and the two lexicalized half values
// 1.5 and 2.5 map to "dedh" and "dhaai". Any other fractional form is
// outside the grammar and returns ErrUnsupportedMagnitude.
func Numeral(token string) (string, error) {
	token = strings.ReplaceAll(token, ",", "")
	if token == "" {
		return "", ErrUnsupportedMagnitude
	}
	if strings.ContainsRune(token, '.') {
		switch token {
		case "1.5":
			return "dedh", nil
		case "2.5":
			return "dhaai", nil
		}
		return "", ErrUnsupportedMagnitude
	}
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return "", ErrUnsupportedMagnitude
	}
	return Number(n)
}

// Word returns the table entry for 0..99; used by transcript analysis to
// reverse spoken prices back into integers.
func Word(n int) (string, bool) {
	if n < 0 || n > 99 {
		return "", false
	}
	return ones[n], true
}

// Value reverses Word: "bayaalees" -> 42.
func Value(word string) (int, bool) {
	v, ok := reverse[word]
	return v, ok
}

var reverse = func() map[string]int {
	m := make(map[string]int, len(ones))
	for i, w := range ones {
		m[w] = i
	}
	return m
}()
