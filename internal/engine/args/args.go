// Package args parses the target and options of a directive body.
package args

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/zerr"
)

// Parse reads the target and the name=value options from a directive body,
// the text following the directive name. Options are checked against the set
// recognized by kind.
func Parse(body string, kind domain.Kind) (string, domain.Options, error) {
	var opts domain.Options

	t := tokenizer{s: body}
	t.skipSpace()
	if t.done() {
		return "", opts, zerr.Wrap(domain.ErrParse, "missing include target")
	}

	rawTarget, err := t.value()
	if err != nil {
		return "", opts, err
	}
	target := Unescape(rawTarget)
	if target == "" {
		return "", opts, zerr.Wrap(domain.ErrParse, "missing include target")
	}

	for {
		t.skipSpace()
		if t.done() {
			break
		}

		name, err := t.name()
		if err != nil {
			return "", opts, err
		}
		raw, err := t.value()
		if err != nil {
			return "", opts, zerr.With(err, "option", name)
		}

		if opt, ok := domain.LookupOption(name); ok && opts.Has(opt) {
			return "", opts, zerr.With(zerr.Wrap(domain.ErrParse, "option given twice"), "option", name)
		}
		if err := Set(&opts, kind, name, raw); err != nil {
			return "", opts, err
		}
	}

	return target, opts, nil
}

// Set assigns the option called name from its textual value, checked against
// the options recognized by kind, and marks it as given.
func Set(opts *domain.Options, kind domain.Kind, name, raw string) error {
	opt, ok := domain.LookupOption(name)
	if !ok || !kind.Accepts(opt) {
		return zerr.With(zerr.Wrap(domain.ErrUnknownOption, "unknown option "+strconv.Quote(name)), "option", name)
	}
	if err := assign(opts, opt, raw); err != nil {
		return zerr.With(err, "option", name)
	}
	opts.Set |= opt
	return nil
}

func assign(opts *domain.Options, opt domain.Option, raw string) error {
	switch opt {
	case domain.OptStart, domain.OptEnd, domain.OptExclude, domain.OptEncoding:
		v := Unescape(raw)
		if v == "" {
			return zerr.Wrap(domain.ErrValidation, "value must not be empty")
		}
		switch opt {
		case domain.OptStart:
			opts.Start = v
		case domain.OptEnd:
			opts.End = v
		case domain.OptExclude:
			opts.Exclude = v
		default:
			if _, err := domain.LookupEncoding(v); err != nil {
				return err
			}
			opts.Encoding = v
		}
	case domain.OptHeadingOffset:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrValidation, "expected an integer"), "value", raw)
		}
		opts.HeadingOffset = n
	case domain.OptOrder:
		order, err := domain.ParseOrder(raw)
		if err != nil {
			return err
		}
		opts.Order = order
	default:
		b, err := ParseBool(raw)
		if err != nil {
			return err
		}
		setBool(opts, opt, b)
	}
	return nil
}

func setBool(opts *domain.Options, opt domain.Option, b bool) {
	switch opt {
	case domain.OptPreserveIncluderIndent:
		opts.PreserveIncluderIndent = b
	case domain.OptDedent:
		opts.Dedent = b
	case domain.OptTrailingNewlines:
		opts.TrailingNewlines = b
	case domain.OptComments:
		opts.Comments = b
	case domain.OptRewriteRelativeURLs:
		opts.RewriteRelativeURLs = b
	case domain.OptRecursive:
		opts.Recursive = b
	}
}

// ParseBool accepts exactly "true" or "false".
func ParseBool(raw string) (bool, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, zerr.With(zerr.Wrap(domain.ErrValidation, "expected true or false"), "value", raw)
	}
}

// Unescape decodes the escape sequences \n \t \r \\ \" and \'.
// Any other backslash sequence is kept as written.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"', '\'':
			b.WriteByte(s[i+1])
		default:
			b.WriteByte(c)
			continue
		}
		i++
	}
	return b.String()
}

type tokenizer struct {
	s   string
	pos int
}

func (t *tokenizer) done() bool {
	return t.pos >= len(t.s)
}

func (t *tokenizer) skipSpace() {
	for !t.done() {
		r, size := utf8.DecodeRuneInString(t.s[t.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		t.pos += size
	}
}

// name reads an option name up to and including the '='.
func (t *tokenizer) name() (string, error) {
	start := t.pos
	for !t.done() {
		r, size := utf8.DecodeRuneInString(t.s[t.pos:])
		switch {
		case r == '=':
			name := t.s[start:t.pos]
			t.pos += size
			if name == "" {
				return "", zerr.Wrap(domain.ErrParse, "option without a name")
			}
			return name, nil
		case unicode.IsSpace(r):
			return "", zerr.With(zerr.Wrap(domain.ErrParse, "expected name=value"), "token", t.s[start:t.pos])
		}
		t.pos += size
	}
	return "", zerr.With(zerr.Wrap(domain.ErrParse, "expected name=value"), "token", t.s[start:])
}

// value reads a quoted or bare value. Quoted values are returned without
// their quotes and with escapes left for Unescape.
func (t *tokenizer) value() (string, error) {
	if t.done() {
		return "", nil
	}

	quote := t.s[t.pos]
	if quote != '"' && quote != '\'' {
		start := t.pos
		for !t.done() {
			r, size := utf8.DecodeRuneInString(t.s[t.pos:])
			if unicode.IsSpace(r) {
				break
			}
			t.pos += size
		}
		return t.s[start:t.pos], nil
	}

	t.pos++
	start := t.pos
	for !t.done() {
		switch t.s[t.pos] {
		case '\\':
			if t.pos+1 < len(t.s) && (t.s[t.pos+1] == quote || t.s[t.pos+1] == '\\') {
				t.pos += 2
				continue
			}
		case quote:
			v := t.s[start:t.pos]
			t.pos++
			return v, nil
		}
		t.pos++
	}
	return "", zerr.Wrap(domain.ErrParse, "unterminated quoted string")
}
