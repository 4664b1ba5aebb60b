// Package sqlbuild composes PostgreSQL statements from typed fragments.
//
// A statement is assembled from four kinds of pieces, never from string
// concatenation of caller input:
//
//   - Identifier: an object name, always double-quoted.
//   - Literal: a value sent as a bind parameter ($n), optionally cast.
//   - Int: an integer embedded in the text, for closed numeric spaces such
//     as SRIDs where a bind parameter would only get in the planner's way.
//   - Raw: trusted SQL text, either fixed by this codebase or supplied by the
//     caller as a filter or ordering clause.
//
// Seq and Join combine pieces. Build renders the tree into SQL text plus the
// ordered argument list for the driver.
package sqlbuild

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// MaxIdentifierLength is PostgreSQL's NAMEDATALEN-1. Longer names are
// silently truncated by the server, which would make two distinct names
// collide, so they are rejected instead.
const MaxIdentifierLength = 63

// ErrInvalidIdentifier is returned when an identifier part is empty, too
// long or contains a NUL byte.
var ErrInvalidIdentifier = errors.New("invalid SQL identifier")

var castPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\[\])?$`)

// Fragment is one node of a statement tree.
type Fragment interface {
	render(r *renderer) error
}

// Identifier is a possibly schema-qualified object name.
type Identifier []string

// Ident builds an Identifier from its dot-separated parts.
func Ident(parts ...string) Identifier {
	return Identifier(parts)
}

// Literal is a value bound through the driver protocol.
type Literal struct {
	Value any
	// Cast is an optional type name appended as ::Cast. It is needed where
	// the parameter type cannot be inferred, e.g. the right side of jsonb -.
	Cast string
}

// Param returns an untyped bound literal.
func Param(v any) Literal {
	return Literal{Value: v}
}

// TypedParam returns a bound literal with an explicit cast.
func TypedParam(v any, cast string) Literal {
	return Literal{Value: v, Cast: cast}
}

// Int is an integer rendered inline.
type Int int64

// Raw is trusted SQL text rendered verbatim.
type Raw string

// Seq renders its fragments one after the other with no separator.
type Seq []Fragment

// Join renders frags separated by sep.
func Join(sep string, frags ...Fragment) Seq {
	out := make(Seq, 0, len(frags)*2)
	for i, f := range frags {
		if i > 0 {
			out = append(out, Raw(sep))
		}
		out = append(out, f)
	}
	return out
}

// Statement is rendered SQL ready for the driver.
type Statement struct {
	SQL  string
	Args []any
}

// Build renders f. The leading arguments occupy $1..$len(leading) and are
// meant for placeholders written by the caller inside Raw fragments; bound
// Literals found in the tree are numbered after them.
func Build(f Fragment, leading ...any) (Statement, error) {
	r := &renderer{args: append([]any(nil), leading...)}
	if err := f.render(r); err != nil {
		return Statement{}, err
	}
	return Statement{SQL: r.sb.String(), Args: r.args}, nil
}

// ValidateIdentifier reports whether name can be used as one identifier part.
func ValidateIdentifier(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	case len(name) > MaxIdentifierLength:
		return fmt.Errorf("%w: %q exceeds %d bytes", ErrInvalidIdentifier, name, MaxIdentifierLength)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidIdentifier, name)
	}
	return nil
}

type renderer struct {
	sb   strings.Builder
	args []any
}

func (id Identifier) render(r *renderer) error {
	if len(id) == 0 {
		return fmt.Errorf("%w: no name parts", ErrInvalidIdentifier)
	}
	for _, part := range id {
		if err := ValidateIdentifier(part); err != nil {
			return err
		}
	}
	r.sb.WriteString(pgx.Identifier(id).Sanitize())
	return nil
}

func (l Literal) render(r *renderer) error {
	if l.Cast != "" && !castPattern.MatchString(l.Cast) {
		return fmt.Errorf("invalid cast type %q", l.Cast)
	}
	r.args = append(r.args, l.Value)
	r.sb.WriteByte('$')
	r.sb.WriteString(strconv.Itoa(len(r.args)))
	if l.Cast != "" {
		r.sb.WriteString("::")
		r.sb.WriteString(l.Cast)
	}
	return nil
}

func (i Int) render(r *renderer) error {
	r.sb.WriteString(strconv.FormatInt(int64(i), 10))
	return nil
}

func (s Raw) render(r *renderer) error {
	r.sb.WriteString(string(s))
	return nil
}

func (s Seq) render(r *renderer) error {
	for _, f := range s {
		if f == nil {
			continue
		}
		if err := f.render(r); err != nil {
			return err
		}
	}
	return nil
}
