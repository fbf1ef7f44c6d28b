// Package mathexpr evaluates plain arithmetic over numeric literals.
// It accepts + - * / ^ with parentheses and unary minus, nothing else,
// so spoken "calculate" commands can never reach anything executable.
package mathexpr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrDivideByZero = errors.New("division by zero")
	ErrSyntax       = errors.New("invalid expression")
	ErrOutOfRange   = errors.New("result out of range")
)

// Eval parses and evaluates expr in one pass.
func Eval(expr string) (float64, error) {
	p := &parser{input: strings.TrimSpace(expr)}
	if p.input == "" {
		return 0, ErrSyntax
	}

	v, err := p.expression()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("%w: unexpected %q", ErrSyntax, p.input[p.pos:])
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrOutOfRange
	}
	return v, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

// expression := term (('+'|'-') term)*
func (p *parser) expression() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			r, err := p.term()
			if err != nil {
				return 0, err
			}
			v += r
		case '-':
			p.pos++
			r, err := p.term()
			if err != nil {
				return 0, err
			}
			v -= r
		default:
			return v, nil
		}
	}
}

// term := power (('*'|'/') power)*
func (p *parser) term() (float64, error) {
	v, err := p.power()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			r, err := p.power()
			if err != nil {
				return 0, err
			}
			v *= r
		case '/':
			p.pos++
			r, err := p.power()
			if err != nil {
				return 0, err
			}
			if r == 0 {
				return 0, ErrDivideByZero
			}
			v /= r
		default:
			return v, nil
		}
	}
}

// power := unary ('^' power)?, right associative
func (p *parser) power() (float64, error) {
	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	if p.peek() == '^' {
		p.pos++
		r, err := p.power()
		if err != nil {
			return 0, err
		}
		return math.Pow(v, r), nil
	}
	return v, nil
}

func (p *parser) unary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return p.primary()
}

func (p *parser) primary() (float64, error) {
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		v, err := p.expression()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("%w: missing closing parenthesis", ErrSyntax)
		}
		p.pos++
		return v, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.number()
	case c == 0:
		return 0, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	default:
		return 0, fmt.Errorf("%w: unexpected %q", ErrSyntax, string(c))
	}
}

func (p *parser) number() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		p.pos++
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrSyntax, p.input[start:p.pos])
	}
	return v, nil
}
