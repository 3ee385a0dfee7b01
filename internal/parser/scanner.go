package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsgonest/dtsresolve/internal/ast"
)

// TokenKind classifies a scanned token. Keywords scan as TokenIdentifier;
// the parser recognizes them by text since most are contextual.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdentifier
	TokenPrivateName
	TokenString
	TokenNumber
	TokenBigInt
	TokenNoSubstitutionTemplate
	TokenTemplateHead
	TokenTemplateMiddle
	TokenTemplateTail
	TokenPunct
	TokenUnknown
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of file"
	case TokenIdentifier:
		return "identifier"
	case TokenPrivateName:
		return "private name"
	case TokenString:
		return "string literal"
	case TokenNumber, TokenBigInt:
		return "numeric literal"
	case TokenNoSubstitutionTemplate, TokenTemplateHead, TokenTemplateMiddle, TokenTemplateTail:
		return "template literal"
	case TokenPunct:
		return "punctuation"
	}
	return "unknown token"
}

// punctuators, longest first so that maximal munch works by prefix match.
// '>' is always scanned alone; the expression parser joins adjacent '>'
// tokens into shift and comparison operators.
var punctuators = []string{
	"...", "===", "!==", "**=", "<<=", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", "<<", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "**",
	"{", "}", "(", ")", "[", "]", ".", ";", ",", "<", ">", "+", "-", "*",
	"/", "%", "&", "|", "^", "!", "~", "?", ":", "=", "@",
}

// Scanner turns declaration source text into tokens. It records the comments
// that precede each token and whether a line break separates it from the
// previous one.
type Scanner struct {
	text string
	pos  int

	tok      TokenKind
	tokText  string // raw text; cooked value for strings and templates
	tokPos   int
	tokEnd   int
	newline  bool
	comments []string

	onError func(pos, end, code int, msg string)
}

// NewScanner returns a scanner positioned before the first token of text.
func NewScanner(text string, onError func(pos, end, code int, msg string)) *Scanner {
	if onError == nil {
		onError = func(int, int, int, string) {}
	}
	return &Scanner{text: text, onError: onError}
}

func (s *Scanner) Token() TokenKind          { return s.tok }
func (s *Scanner) TokenText() string         { return s.tokText }
func (s *Scanner) TokenPos() int             { return s.tokPos }
func (s *Scanner) TokenEnd() int             { return s.tokEnd }
func (s *Scanner) HasPrecedingNewline() bool { return s.newline }

// TakeComments returns and clears the comments collected before the current token.
func (s *Scanner) TakeComments() []string {
	c := s.comments
	s.comments = nil
	return c
}

// Comments returns the comments collected before the current token.
func (s *Scanner) Comments() []string { return s.comments }

// Scan advances to the next token.
func (s *Scanner) Scan() TokenKind {
	s.newline = false
	s.comments = nil
	s.skipTrivia()
	s.tokPos = s.pos
	if s.pos >= len(s.text) {
		s.tok, s.tokText, s.tokEnd = TokenEOF, "", s.pos
		return s.tok
	}
	ch, size := utf8.DecodeRuneInString(s.text[s.pos:])
	switch {
	case ch == '"' || ch == '\'':
		s.scanString(byte(ch))
	case ch == '`':
		s.pos++
		s.scanTemplate(TokenNoSubstitutionTemplate, TokenTemplateHead)
	case isDigit(ch) || (ch == '.' && s.pos+1 < len(s.text) && isDigit(rune(s.text[s.pos+1]))):
		s.scanNumber()
	case ch == '#' && s.pos+1 < len(s.text) && isIdentStart(rune(s.text[s.pos+1])):
		s.pos++
		s.scanIdentifierRest()
		s.tok = TokenPrivateName
	case isIdentStart(ch):
		s.scanIdentifierRest()
		s.tok = TokenIdentifier
	default:
		for _, p := range punctuators {
			if strings.HasPrefix(s.text[s.pos:], p) {
				s.pos += len(p)
				s.tok, s.tokText = TokenPunct, p
				s.tokEnd = s.pos
				return s.tok
			}
		}
		s.pos += size
		s.tok, s.tokText = TokenUnknown, string(ch)
		s.onError(s.tokPos, s.pos, ast.CodeInvalidCharacter, "Invalid character.")
	}
	s.tokEnd = s.pos
	return s.tok
}

// RescanTemplateContinuation rescans a '}' token as the continuation of a
// template literal type.
func (s *Scanner) RescanTemplateContinuation() TokenKind {
	s.pos = s.tokPos + 1
	s.scanTemplate(TokenTemplateTail, TokenTemplateMiddle)
	s.tokEnd = s.pos
	return s.tok
}

// RescanGreater joins a '>' token with directly following '>' and '='
// characters, for use in expression context.
func (s *Scanner) RescanGreater() TokenKind {
	if s.tok != TokenPunct || s.tokText != ">" {
		return s.tok
	}
	for _, p := range []string{">>>=", ">>>", ">>=", ">>", ">="} {
		if strings.HasPrefix(s.text[s.tokPos:], p) {
			s.pos = s.tokPos + len(p)
			s.tokText = p
			s.tokEnd = s.pos
			break
		}
	}
	return s.tok
}

func (s *Scanner) skipTrivia() {
	for s.pos < len(s.text) {
		ch := s.text[s.pos]
		switch {
		case ch == '\n' || ch == '\r':
			s.newline = true
			s.pos++
		case ch == ' ' || ch == '\t' || ch == '\f' || ch == '\v':
			s.pos++
		case ch == '/' && s.pos+1 < len(s.text) && s.text[s.pos+1] == '/':
			start := s.pos
			for s.pos < len(s.text) && s.text[s.pos] != '\n' && s.text[s.pos] != '\r' {
				s.pos++
			}
			s.comments = append(s.comments, strings.TrimRight(s.text[start:s.pos], " \t"))
		case ch == '/' && s.pos+1 < len(s.text) && s.text[s.pos+1] == '*':
			start := s.pos
			end := strings.Index(s.text[s.pos+2:], "*/")
			if end < 0 {
				s.pos = len(s.text)
				s.onError(start, s.pos, ast.CodeUnterminatedComment, "'*/' expected.")
			} else {
				s.pos += end + 4
			}
			c := s.text[start:s.pos]
			if strings.ContainsAny(c, "\r\n") {
				s.newline = true
			}
			s.comments = append(s.comments, c)
		case ch == 0xEF && strings.HasPrefix(s.text[s.pos:], "\uFEFF"):
			s.pos += len("\uFEFF")
		default:
			r, size := utf8.DecodeRuneInString(s.text[s.pos:])
			if r == '\u2028' || r == '\u2029' {
				s.newline = true
				s.pos += size
				continue
			}
			if unicode.IsSpace(r) && r >= utf8.RuneSelf {
				s.pos += size
				continue
			}
			return
		}
	}
}

func (s *Scanner) scanIdentifierRest() {
	for s.pos < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[s.pos:])
		if !isIdentPart(r) {
			break
		}
		s.pos += size
	}
	s.tokText = s.text[s.tokPos:s.pos]
}

func (s *Scanner) scanNumber() {
	start := s.pos
	kind := TokenNumber
	if s.text[s.pos] == '0' && s.pos+1 < len(s.text) && strings.ContainsRune("xXbBoO", rune(s.text[s.pos+1])) {
		s.pos += 2
		for s.pos < len(s.text) && (isHexDigit(rune(s.text[s.pos])) || s.text[s.pos] == '_') {
			s.pos++
		}
	} else {
		for s.pos < len(s.text) && (isDigit(rune(s.text[s.pos])) || s.text[s.pos] == '_') {
			s.pos++
		}
		if s.pos < len(s.text) && s.text[s.pos] == '.' {
			s.pos++
			for s.pos < len(s.text) && (isDigit(rune(s.text[s.pos])) || s.text[s.pos] == '_') {
				s.pos++
			}
		}
		if s.pos < len(s.text) && (s.text[s.pos] == 'e' || s.text[s.pos] == 'E') {
			s.pos++
			if s.pos < len(s.text) && (s.text[s.pos] == '+' || s.text[s.pos] == '-') {
				s.pos++
			}
			for s.pos < len(s.text) && isDigit(rune(s.text[s.pos])) {
				s.pos++
			}
		}
	}
	if s.pos < len(s.text) && s.text[s.pos] == 'n' {
		s.pos++
		kind = TokenBigInt
	}
	s.tok, s.tokText = kind, s.text[start:s.pos]
}

func (s *Scanner) scanString(quote byte) {
	s.pos++
	var b strings.Builder
	for {
		if s.pos >= len(s.text) || s.text[s.pos] == '\n' || s.text[s.pos] == '\r' {
			s.onError(s.tokPos, s.pos, ast.CodeUnterminatedString, "Unterminated string literal.")
			break
		}
		ch := s.text[s.pos]
		if ch == quote {
			s.pos++
			break
		}
		if ch == '\\' {
			s.scanEscape(&b)
			continue
		}
		b.WriteByte(ch)
		s.pos++
	}
	s.tok, s.tokText = TokenString, b.String()
}

// scanTemplate scans template text up to a closing backtick (producing done)
// or a '${' (producing open). Token text is the raw template text.
func (s *Scanner) scanTemplate(done, open TokenKind) {
	start := s.pos
	for {
		if s.pos >= len(s.text) {
			s.onError(s.tokPos, s.pos, ast.CodeUnterminatedTemplate, "Unterminated template literal.")
			s.tok, s.tokText = done, s.text[start:s.pos]
			return
		}
		switch {
		case s.text[s.pos] == '`':
			s.tok, s.tokText = done, s.text[start:s.pos]
			s.pos++
			return
		case strings.HasPrefix(s.text[s.pos:], "${"):
			s.tok, s.tokText = open, s.text[start:s.pos]
			s.pos += 2
			return
		case s.text[s.pos] == '\\':
			s.pos += 2
		default:
			s.pos++
		}
	}
}

func (s *Scanner) scanEscape(b *strings.Builder) {
	s.pos++ // backslash
	if s.pos >= len(s.text) {
		return
	}
	ch := s.text[s.pos]
	s.pos++
	switch ch {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case '\r':
		if s.pos < len(s.text) && s.text[s.pos] == '\n' {
			s.pos++
		}
	case '\n':
	case 'x':
		if r, ok := s.hexValue(2); ok {
			b.WriteRune(r)
		}
	case 'u':
		if s.pos < len(s.text) && s.text[s.pos] == '{' {
			end := strings.IndexByte(s.text[s.pos:], '}')
			if end > 0 {
				if r, ok := parseHex(s.text[s.pos+1 : s.pos+end]); ok {
					b.WriteRune(r)
				}
				s.pos += end + 1
			}
			return
		}
		if r, ok := s.hexValue(4); ok {
			b.WriteRune(r)
		}
	default:
		b.WriteByte(ch)
	}
}

func (s *Scanner) hexValue(n int) (rune, bool) {
	if s.pos+n > len(s.text) {
		return 0, false
	}
	r, ok := parseHex(s.text[s.pos : s.pos+n])
	if ok {
		s.pos += n
	}
	return r, ok
}

func parseHex(text string) (rune, bool) {
	if text == "" {
		return 0, false
	}
	var r rune
	for _, c := range text {
		var d rune
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, false
		}
		r = r*16 + d
	}
	return r, true
}

func isDigit(r rune) bool    { return r >= '0' && r <= '9' }
func isHexDigit(r rune) bool { return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') }

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= utf8.RuneSelf && unicode.IsLetter(r))
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r) || (r >= utf8.RuneSelf && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || r == '\u200C' || r == '\u200D'))
}

// IsIdentifierText reports whether text is a valid identifier name.
func IsIdentifierText(text string) bool {
	if text == "" {
		return false
	}
	for i, r := range text {
		if i == 0 && !isIdentStart(r) || i > 0 && !isIdentPart(r) {
			return false
		}
	}
	return true
}
