package dynamoval

import (
	"encoding/base64"
	"encoding/json"
)

// The wire encoding of an AttributeValue is a single-key JSON object
// whose key is the type tag ("N", "S", "BOOL", "B", "NULL", "M", "L",
// "SS", "NS", "BS"). Binary payloads are standard base64 with padding.
//
// Decoding is strict: zero keys, multiple keys, an unrecognized tag,
// or malformed base64 are all hard errors. Every constructible value
// survives an encode/decode round trip unchanged.

// MarshalJSON implements [json.Marshaler] using the DynamoDB wire
// encoding.
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.kind {
	case KindNumber, KindString:
		payload = v.str
	case KindBool, KindNull:
		payload = v.boo
	case KindBinary:
		payload = base64.StdEncoding.EncodeToString(v.bin)
	case KindMap:
		if v.m == nil {
			payload = map[string]AttributeValue{}
		} else {
			payload = v.m
		}
	case KindList:
		if v.l == nil {
			payload = []AttributeValue{}
		} else {
			payload = v.l
		}
	case KindStringSet, KindNumberSet:
		if v.ss == nil {
			payload = []string{}
		} else {
			payload = v.ss
		}
	case KindBinarySet:
		enc := make([]string, len(v.bs))
		for i, b := range v.bs {
			enc[i] = base64.StdEncoding.EncodeToString(b)
		}
		payload = enc
	default:
		return nil, errMessage("cannot encode a zero AttributeValue")
	}
	return json.Marshal(map[string]any{v.kind.String(): payload})
}

// UnmarshalJSON implements [json.Unmarshaler] using the DynamoDB wire
// encoding.
func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if len(obj) == 0 {
		return &Error{Kind: ErrNoKeys}
	}
	if len(obj) > 1 {
		return &Error{Kind: ErrMultipleKeys}
	}
	var tag string
	var raw json.RawMessage
	for k, r := range obj {
		tag, raw = k, r
	}

	switch tag {
	case "N":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*v = NewNumber(s)
	case "S":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*v = NewString(s)
	case "BOOL":
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return err
		}
		*v = NewBool(b)
	case "B":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		bs, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return &Error{Kind: ErrInvalidEncoding, Err: err}
		}
		*v = NewBinary(bs)
	case "NULL":
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return err
		}
		*v = AttributeValue{kind: KindNull, boo: b}
	case "M":
		var m map[string]AttributeValue
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		*v = NewMap(m)
	case "L":
		var l []AttributeValue
		if err := json.Unmarshal(raw, &l); err != nil {
			return err
		}
		*v = NewList(l)
	case "SS":
		var ss []string
		if err := json.Unmarshal(raw, &ss); err != nil {
			return err
		}
		*v = NewStringSet(ss)
	case "NS":
		var ns []string
		if err := json.Unmarshal(raw, &ns); err != nil {
			return err
		}
		*v = NewNumberSet(ns)
	case "BS":
		var enc []string
		if err := json.Unmarshal(raw, &enc); err != nil {
			return err
		}
		bs := make([][]byte, len(enc))
		for i, s := range enc {
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return &Error{Kind: ErrInvalidEncoding, Err: err}
			}
			bs[i] = b
		}
		*v = NewBinarySet(bs)
	default:
		return &Error{Kind: ErrUnknownTag, Detail: tag}
	}
	return nil
}
