package query

// Quantifier defines repetition patterns
type Quantifier int

const (
	QuantNone       Quantifier = iota // No quantifier (exactly once)
	QuantZeroOrMore                   // * (zero or more times)
	QuantOneOrMore                    // + (one or more times)
	QuantZeroOrOne                    // ? (zero or one time)
)

// Unbounded is the maximum count of '*' and '+'.
const Unbounded = -1

func (q Quantifier) String() string {
	switch q {
	case QuantNone:
		return ""
	case QuantZeroOrMore:
		return "*"
	case QuantOneOrMore:
		return "+"
	case QuantZeroOrOne:
		return "?"
	default:
		return "unknown"
	}
}

// Bounds returns the minimum and maximum number of nodes a quantified child
// matcher consumes. max is Unbounded for '*' and '+'.
func (q Quantifier) Bounds() (min, max int) {
	switch q {
	case QuantZeroOrMore:
		return 0, Unbounded
	case QuantOneOrMore:
		return 1, Unbounded
	case QuantZeroOrOne:
		return 0, 1
	default:
		return 1, 1
	}
}

var quantifiers = map[byte]Quantifier{
	'*': QuantZeroOrMore,
	'+': QuantOneOrMore,
	'?': QuantZeroOrOne,
}

// isQuantifier checks if a character is a valid quantifier
func isQuantifier(c byte) bool {
	_, ok := quantifiers[c]
	return ok
}
