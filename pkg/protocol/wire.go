package protocol

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// encoder 按 protobuf 线格式追加字段，零值字段省略
type encoder struct {
	b []byte
}

func (e *encoder) varint(num protowire.Number, v int64) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(v))
}

func (e *encoder) flag(num protowire.Number, v bool) {
	if !v {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, protowire.EncodeBool(v))
}

func (e *encoder) double(num protowire.Number, v float64) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.Fixed64Type)
	e.b = protowire.AppendFixed64(e.b, math.Float64bits(v))
}

func (e *encoder) str(num protowire.Number, v string) {
	if v == "" {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, v)
}

func (e *encoder) bytes(num protowire.Number, v []byte) {
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, v)
}

// message 嵌套消息，空消息也会写出，保证重复字段的数量不丢
func (e *encoder) message(num protowire.Number, fn func(e *encoder)) {
	var sub encoder
	fn(&sub)
	e.bytes(num, sub.b)
}

// field 解码出的单个字段
type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64 // varint / fixed64
	raw []byte // bytes
}

func (f field) asInt() int {
	return int(int64(f.v))
}

func (f field) asInt64() int64 {
	return int64(f.v)
}

func (f field) asBool() bool {
	return protowire.DecodeBool(f.v)
}

func (f field) asDouble() float64 {
	return math.Float64frombits(f.v)
}

// walk 依次回调每个字段，未知的线类型直接跳过
func walk(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			f.v, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.raw, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}
