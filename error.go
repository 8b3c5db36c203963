package dynamoval

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind is the closed taxonomy of conversion failures. Every error
// produced by this package carries exactly one of these kinds.
type ErrorKind int

const (
	// ErrMessage is the escape hatch for errors raised by Marshaler
	// and Unmarshaler implementations rather than by the engine.
	ErrMessage ErrorKind = iota + 1

	// ErrNotMapLike reports a top-level value that did not serialize
	// to a map when an Item was requested.
	ErrNotMapLike
	// ErrNotSetLike reports a set wrapper whose contents did not
	// serialize to a list.
	ErrNotSetLike

	ErrExpectedString
	ErrExpectedMap
	ErrExpectedSeq
	ErrExpectedNumber
	ErrExpectedBool
	ErrExpectedChar
	ErrExpectedUnit
	ErrExpectedUnitStruct
	ErrExpectedEnum
	ErrExpectedBytes
	// ErrExpectedSingleKey reports a map with zero or multiple
	// entries where a single variant entry was required.
	ErrExpectedSingleKey

	ErrFailedToParseInt
	ErrFailedToParseFloat

	// ErrKeyMustBeAString reports a map key that cannot render
	// losslessly as text.
	ErrKeyMustBeAString

	// ErrSerializeMapKeyCalledTwice and ErrSerializeMapValueBeforeKey
	// report misuse of the incremental map builder. They indicate a
	// bug in the caller, not bad data, but are still surfaced as
	// ordinary errors.
	ErrSerializeMapKeyCalledTwice
	ErrSerializeMapValueBeforeKey

	ErrStringSetExpectedType
	ErrNumberSetExpectedType
	ErrBinarySetExpectedType
	ErrSetEmpty
	ErrSetInvalidItem
	ErrSetNotHomogenous

	// Wire decoding violations.
	ErrNoKeys
	ErrMultipleKeys
	ErrUnknownTag
	ErrInvalidEncoding
)

func (k ErrorKind) text() string {
	switch k {
	case ErrNotMapLike:
		return "not a map-like object"
	case ErrNotSetLike:
		return "not a set-like sequence"
	case ErrExpectedString:
		return "expected string"
	case ErrExpectedMap:
		return "expected map"
	case ErrExpectedSeq:
		return "expected seq"
	case ErrExpectedNumber:
		return "expected number"
	case ErrExpectedBool:
		return "expected bool"
	case ErrExpectedChar:
		return "expected char"
	case ErrExpectedUnit:
		return "expected unit"
	case ErrExpectedUnitStruct:
		return "expected unit struct"
	case ErrExpectedEnum:
		return "expected enum"
	case ErrExpectedBytes:
		return "expected binary data"
	case ErrExpectedSingleKey:
		return "expected an item with a single key"
	case ErrKeyMustBeAString:
		return "key must be a string"
	case ErrSerializeMapKeyCalledTwice:
		return "map builder: key set twice without a value"
	case ErrSerializeMapValueBeforeKey:
		return "map builder: value set before key"
	case ErrStringSetExpectedType:
		return "string set elements must serialize to strings"
	case ErrNumberSetExpectedType:
		return "number set elements must serialize to numbers"
	case ErrBinarySetExpectedType:
		return "binary set elements must serialize to binary data"
	case ErrSetEmpty:
		return "set cannot be empty"
	case ErrSetInvalidItem:
		return "set must contain only strings, numbers, or bytes"
	case ErrSetNotHomogenous:
		return "set contains elements that serialized to different types"
	case ErrNoKeys:
		return "expected exactly one key in the object, found none"
	case ErrMultipleKeys:
		return "expected exactly one key in the object, found multiple keys"
	case ErrUnknownTag:
		return "unknown DynamoDB type tag"
	case ErrInvalidEncoding:
		return "failed to decode base64"
	}
	return "dynamoval error"
}

// Error is the error type for every failure this package reports. Two
// errors describe the same failure iff their Kind, rendered Path, and
// offending Value agree.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Path locates the failure within the input, rendered as a dotted
	// field path with [i] array indices. Empty when the failing call
	// site had no path context.
	Path string
	// Value is the offending attribute value, when one was in hand.
	Value *AttributeValue
	// Detail carries kind-specific text: the custom message for
	// ErrMessage, the unparseable text for the parse kinds, the
	// unrecognized key for ErrUnknownTag.
	Detail string
	// Err is the underlying cause for parse and encoding failures.
	Err error
}

func (e *Error) Error() string {
	var sb strings.Builder
	switch e.Kind {
	case ErrMessage:
		sb.WriteString(e.Detail)
	case ErrFailedToParseInt:
		fmt.Fprintf(&sb, "failed to parse %q as an integer: %v", e.Detail, e.Err)
	case ErrFailedToParseFloat:
		fmt.Fprintf(&sb, "failed to parse %q as a float: %v", e.Detail, e.Err)
	case ErrUnknownTag:
		fmt.Fprintf(&sb, "the key %q is not a known DynamoDB type tag", e.Detail)
	case ErrInvalidEncoding:
		fmt.Fprintf(&sb, "failed to decode base64: %v", e.Err)
	default:
		sb.WriteString(e.Kind.text())
	}
	if e.Path != "" {
		fmt.Fprintf(&sb, " at '%s'", e.Path)
	}
	if e.Value != nil {
		fmt.Fprintf(&sb, ". Value: %s", e.Value)
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// errMessage wraps a message from a Marshaler or Unmarshaler
// implementation.
func errMessage(format string, args ...any) *Error {
	return &Error{Kind: ErrMessage, Detail: fmt.Sprintf(format, args...)}
}

// pathKind discriminates the segments of an error path.
type pathKind int

const (
	pathField pathKind = iota
	pathIndex
	pathVariant
)

// pathNode is one segment of the reverse-linked path chain threaded
// through the decoder. Nodes live on the stack of the recursive
// decode calls; nothing is allocated until an error actually renders.
// A nil *pathNode is the root.
type pathNode struct {
	parent *pathNode
	kind   pathKind
	name   string // pathField, pathVariant
	index  int    // pathIndex
}

func (p *pathNode) render() string {
	if p == nil {
		return ""
	}
	var segs []*pathNode
	for n := p; n != nil; n = n.parent {
		segs = append(segs, n)
	}
	var sb strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		s := segs[i]
		switch s.kind {
		case pathIndex:
			sb.WriteString("[")
			sb.WriteString(strconv.Itoa(s.index))
			sb.WriteString("]")
		default:
			if sb.Len() > 0 {
				sb.WriteString(".")
			}
			sb.WriteString(s.name)
		}
	}
	return sb.String()
}

// errAt builds an error carrying the current path and the offending
// value. The value is copied so the error stays valid after the
// decoder moves on.
func errAt(kind ErrorKind, path *pathNode, v AttributeValue) *Error {
	return &Error{Kind: kind, Path: path.render(), Value: &v}
}

// errAtNoValue builds an error carrying only the current path.
func errAtNoValue(kind ErrorKind, path *pathNode) *Error {
	return &Error{Kind: kind, Path: path.render()}
}

// errParse builds a numeric parse failure wrapping the strconv cause.
func errParse(kind ErrorKind, path *pathNode, text string, cause error) *Error {
	return &Error{Kind: kind, Path: path.render(), Detail: text, Err: cause}
}
