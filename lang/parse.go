package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/klauspost/readahead"
)

// ParseReader parses a buildfile from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*AST, error) {
	// Wrap reader with async read-ahead so large inputs are fetched while
	// earlier chunks are copied.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return ParseString(ctx, string(data), opts...)
}

// ParseString parses a buildfile from a string.
func ParseString(ctx context.Context, s string, opts ...Option) (*AST, error) {
	ast := new(AST)

	for _, opt := range opts {
		opt(ast)
	}

	p := &parser{
		input: []byte(s),
		src:   s,
		line:  1,
		col:   1,
	}

	ast.logger.TraceContext(ctx, "parse start",
		slog.Int("source_bytes", len(s)))

	if err := p.parseBuildfile(ast); err != nil {
		ast.logger.DebugContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	ast.logger.TraceContext(ctx, "parse complete",
		slog.Int("assignment_count", len(ast.Assignments)))

	return ast, nil
}

// parser holds the parser state.
type parser struct {
	src   string
	input []byte
	pos   int
	line  int
	col   int
}

// parseBuildfile parses the entire input as a list of assignments.
func (p *parser) parseBuildfile(ast *AST) error {
	ast.Assignments = make([]*Assignment, 0)

	for {
		if err := p.skipWhitespaceAndComments(); err != nil {
			return err
		}

		if p.eof() {
			return nil
		}

		a, err := p.parseAssignment()
		if err != nil {
			return err
		}

		ast.Assignments = append(ast.Assignments, a)
	}
}

// parseAssignment parses: IdExpr ('=' | '+=' | '-=') Expression ';'?.
func (p *parser) parseAssignment() (*Assignment, error) {
	start := p.position()

	target, err := p.parseIDExpr()
	if err != nil {
		return nil, err
	}

	if err := p.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}

	var op AssignOp

	switch {
	case p.peek() == '=':
		op = Assign

		p.advance()
	case p.peekN(2) == "+=":
		op = AppendAssign

		p.advance()
		p.advance()
	case p.peekN(2) == "-=":
		op = RemoveAssign

		p.advance()
		p.advance()
	default:
		return nil, p.errorf(`"="`, `"+="`, `"-="`)
	}

	if err := p.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	end := value.Range.End

	if err := p.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}

	if p.peek() == ';' {
		p.advance()

		end = p.position()
	}

	return &Assignment{
		Target: target,
		Op:     op,
		Value:  value,
		Range:  Range{Start: start, End: end},
	}, nil
}

// parseExpression parses: Simple (('+' | '-') Simple)*.
// The operators are left-associative.
func (p *parser) parseExpression() (*Expr, error) {
	lhs, err := p.parseSimple()
	if err != nil {
		return nil, err
	}

	for {
		// Remember where the expression ended in case no operator follows;
		// trailing trivia belongs to whatever comes next.
		saved := *p

		if err := p.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}

		ch := p.peek()
		if (ch != '+' && ch != '-') || p.peekN(2) == "+=" || p.peekN(2) == "-=" {
			*p = saved

			return lhs, nil
		}

		p.advance()

		if err := p.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}

		rhs, err := p.parseSimple()
		if err != nil {
			return nil, err
		}

		lhs = &Expr{
			Kind:  ExprBinary,
			Op:    BinaryOp(ch),
			LHS:   lhs,
			RHS:   rhs,
			Range: Range{Start: lhs.Range.Start, End: rhs.Range.End},
		}
	}
}

// parseSimple parses: String | IdExpr ('(' Args? ')')?.
func (p *parser) parseSimple() (*Expr, error) {
	start := p.position()

	switch ch := p.peek(); {
	case ch == '"':
		text, err := p.parseString()
		if err != nil {
			return nil, err
		}

		return &Expr{
			Kind:  ExprString,
			Text:  text,
			Range: Range{Start: start, End: p.position()},
		}, nil

	case isIdentifierStart(ch):
		id, err := p.parseIDExpr()
		if err != nil {
			return nil, err
		}

		saved := *p

		if err := p.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}

		if p.peek() != '(' {
			*p = saved

			return &Expr{Kind: ExprReference, ID: id, Range: id.Range}, nil
		}

		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}

		return &Expr{
			Kind:  ExprCall,
			ID:    id,
			Args:  args,
			Range: Range{Start: start, End: p.position()},
		}, nil

	default:
		return nil, p.errorf("string", "identifier")
	}
}

// parseArgs parses: '(' (Expression (',' Expression)* ','?)? ')'.
func (p *parser) parseArgs() ([]*Expr, error) {
	if !p.expect('(') {
		return nil, p.errorf(`"("`)
	}

	args := make([]*Expr, 0)

	if err := p.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}

	if p.expect(')') {
		return args, nil
	}

	for {
		if err := p.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}

		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if err := p.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}

		switch {
		case p.expect(','):
			// trailing comma
			if err := p.skipWhitespaceAndComments(); err != nil {
				return nil, err
			}

			if p.expect(')') {
				return args, nil
			}
		case p.expect(')'):
			return args, nil
		default:
			return nil, p.errorf(`","`, `")"`)
		}
	}
}

// parseIDExpr parses: Identifier ('.' Identifier)*.
func (p *parser) parseIDExpr() (*IDExpr, error) {
	start := p.position()

	path := make([]string, 0, 1)

	for {
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}

		path = append(path, name)

		if p.peek() != '.' {
			break
		}

		p.advance()
	}

	return &IDExpr{Path: path, Range: Range{Start: start, End: p.position()}}, nil
}

// parseIdentifier parses an identifier token.
func (p *parser) parseIdentifier() (string, error) {
	start := p.pos

	if !isIdentifierStart(p.peek()) {
		return "", p.errorf("identifier")
	}

	p.advance()

	for !p.eof() && isIdentifierContinue(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos]), nil
}

// parseString parses a double-quoted string literal and decodes its escape
// sequences. Strings may not span lines. Bytes outside escapes are copied
// verbatim, so literals need not be valid UTF-8.
func (p *parser) parseString() (string, error) {
	start := p.position()

	p.advance() // skip opening quote

	var sb strings.Builder

	for !p.eof() {
		ch := p.peek()

		switch ch {
		case '"':
			p.advance()

			return sb.String(), nil

		case '\n':
			return "", newParseError(p.src, start, "newline", `'"'`).
				wrap(ErrUnterminatedString)

		case '\\':
			p.advance()

			if p.eof() {
				break
			}

			if err := p.parseEscape(&sb); err != nil {
				return "", err
			}

		default:
			from := p.pos
			p.advance()
			sb.Write(p.input[from:p.pos])
		}
	}

	return "", newParseError(p.src, start, "end of input", `'"'`).
		wrap(ErrUnterminatedString)
}

// hexEscapes maps hexadecimal escape letters to their digit count.
var hexEscapes = map[rune]int{'x': 2, 'u': 4, 'U': 8}

// parseEscape decodes the escape following a backslash into sb. \xNN
// writes one raw byte; \uNNNN and \UNNNNNNNN write a UTF-8 encoded rune.
// Unknown escapes are kept literally.
func (p *parser) parseEscape(sb *strings.Builder) error {
	pos := p.position()
	from := p.pos
	esc := p.peek()
	p.advance()

	switch esc {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case '"', '\\':
		sb.WriteRune(esc)
	case '\n':
		// line continuation
	case 'x', 'u', 'U':
		n := hexEscapes[esc]

		digits := p.peekN(n)

		v, err := strconv.ParseUint(digits, 16, 32)
		if len(digits) != n || err != nil {
			return newParseError(p.src, pos, strconv.Quote(`\`+string(esc)+digits),
				fmt.Sprintf("%d hexadecimal digits", n)).wrap(ErrInvalidEscape)
		}

		for range n {
			p.advance()
		}

		if esc == 'x' {
			sb.WriteByte(byte(v))

			break
		}

		if !utf8.ValidRune(rune(v)) {
			return newParseError(p.src, pos, strconv.Quote(`\`+string(esc)+digits),
				"valid code point").wrap(ErrInvalidEscape)
		}

		sb.WriteRune(rune(v))
	default:
		sb.WriteByte('\\')
		sb.Write(p.input[from:p.pos])
	}

	return nil
}

// Helper methods

func (p *parser) errorf(expected ...string) *ParseError {
	return newParseError(p.src, p.position(), p.describe(), expected...)
}

// describe names the input at the current position for error messages.
func (p *parser) describe() string {
	if p.eof() {
		return "end of input"
	}

	ch := p.peek()
	if unicode.IsPrint(ch) {
		return strconv.QuoteRune(ch)
	}

	return strconv.QuoteRuneToASCII(ch)
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) expect(ch rune) bool {
	if p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

func (p *parser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

func (p *parser) skipWhitespaceAndComments() error {
	for {
		p.skipWhitespace()

		if p.eof() {
			return nil
		}

		switch {
		case p.peek() == '#', p.peekN(2) == "//":
			p.skipLineComment()
		case p.peekN(2) == "/*":
			if err := p.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (p *parser) skipLineComment() {
	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}
}

func (p *parser) skipBlockComment() error {
	start := p.position()

	p.advance() // skip '/'
	p.advance() // skip '*'

	for !p.eof() {
		if p.peekN(2) == "*/" {
			p.advance()
			p.advance()

			return nil
		}

		p.advance()
	}

	return newParseError(p.src, start, "end of input", `"*/"`).
		wrap(ErrUnterminatedComment)
}

// Character classification

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
