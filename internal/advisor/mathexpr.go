package advisor

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Tiny evaluator for the arithmetic fallback branch. Accepts only digits,
// + - * / ( ) and '.', so arbitrary questions can never reach the parser.

var mathCharset = regexp.MustCompile(`^[0-9+\-*/().]+$`)

var errBadExpr = errors.New("not an arithmetic expression")

// evalMath evaluates a plain arithmetic expression. Returns errBadExpr for
// anything that is not a well-formed expression over the allowed charset.
func evalMath(expression string) (float64, error) {
	cleaned := strings.ReplaceAll(expression, " ", "")
	if cleaned == "" || !mathCharset.MatchString(cleaned) {
		return 0, errBadExpr
	}

	p := &exprParser{input: cleaned}
	result, err := p.parseAddSub()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.input) {
		return 0, errBadExpr
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, errBadExpr
	}
	return result, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) parseAddSub() (float64, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseMulDiv()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseMulDiv()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseMulDiv() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, errBadExpr
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, error) {
	if p.peek() == '(' {
		p.pos++
		v, err := p.parseAddSub()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, errBadExpr
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	for p.pos < len(p.input) && (p.input[p.pos] == '.' || (p.input[p.pos] >= '0' && p.input[p.pos] <= '9')) {
		p.pos++
	}
	if start == p.pos {
		return 0, errBadExpr
	}
	return strconv.ParseFloat(p.input[start:p.pos], 64)
}

// formatMathResult renders a result without trailing zeros ("4", "2.5").
func formatMathResult(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
