package codec

import (
	"time"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Field is one decoded top-level protobuf field. Bytes is set for
// length-delimited fields and Varint for varint fields; it aliases the input.
type Field struct {
	Num    protowire.Number
	Type   protowire.Type
	Bytes  []byte
	Varint uint64
}

// Walk calls fn for every varint and length-delimited field in b, in wire
// order. Fixed-width and group fields are skipped.
func Walk(b []byte, fn func(f Field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ErrCorrupt
		}
		b = b[n:]

		f := Field{Num: num, Type: typ}
		switch typ {
		case protowire.VarintType:
			f.Varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.Bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return ErrCorrupt
			}
			b = b[n:]
			continue
		}
		if n < 0 {
			return ErrCorrupt
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func AppendString(out []byte, num protowire.Number, s string) []byte {
	out = protowire.AppendTag(out, num, protowire.BytesType)
	return protowire.AppendString(out, s)
}

func AppendVarint(out []byte, num protowire.Number, v uint64) []byte {
	out = protowire.AppendTag(out, num, protowire.VarintType)
	return protowire.AppendVarint(out, v)
}

func AppendMessage(out []byte, num protowire.Number, msg []byte) []byte {
	out = protowire.AppendTag(out, num, protowire.BytesType)
	return protowire.AppendBytes(out, msg)
}

// AppendTimestamp writes t as a nested google.protobuf.Timestamp. Zero
// times are omitted.
func AppendTimestamp(out []byte, num protowire.Number, t time.Time) []byte {
	if t.IsZero() {
		return out
	}
	ts := timestamppb.New(t)
	var inner []byte
	if ts.Seconds != 0 {
		inner = protowire.AppendTag(inner, 1, protowire.VarintType)
		inner = protowire.AppendVarint(inner, uint64(ts.Seconds))
	}
	if ts.Nanos != 0 {
		inner = protowire.AppendTag(inner, 2, protowire.VarintType)
		inner = protowire.AppendVarint(inner, uint64(ts.Nanos))
	}
	return AppendMessage(out, num, inner)
}

// ParseTimestamp reads a nested google.protobuf.Timestamp; the result is UTC.
func ParseTimestamp(b []byte) (time.Time, error) {
	ts := &timestamppb.Timestamp{}
	err := Walk(b, func(f Field) error {
		switch {
		case f.Num == 1 && f.Type == protowire.VarintType:
			ts.Seconds = int64(f.Varint)
		case f.Num == 2 && f.Type == protowire.VarintType:
			ts.Nanos = int32(f.Varint)
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	if err := ts.CheckValid(); err != nil {
		return time.Time{}, ErrCorrupt
	}
	return ts.AsTime(), nil
}
