package handler

import (
	"google.golang.org/protobuf/encoding/protowire"

	"salon-scheduler/internal/codec"
	"salon-scheduler/internal/model"
)

// Request encoders, for Go clients and the bridge tests.

func EncodeClientPayload(p model.ClientPayload) []byte {
	var out []byte
	out = codec.AppendString(out, 1, p.Name)
	out = codec.AppendString(out, 2, p.Email)
	out = codec.AppendString(out, 3, p.Phone)
	out = codec.AppendString(out, 4, p.Address)
	return out
}

func EncodeServicePayload(p model.ServicePayload) []byte {
	var out []byte
	out = codec.AppendString(out, 1, p.Name)
	out = codec.AppendString(out, 2, p.Description)
	out = codec.AppendVarint(out, 3, p.Duration)
	out = codec.AppendVarint(out, 4, p.Price)
	return out
}

func EncodeAppointmentPayload(p model.AppointmentPayload) []byte {
	var out []byte
	out = codec.AppendVarint(out, 1, p.ClientID)
	out = codec.AppendVarint(out, 2, p.ServiceID)
	out = codec.AppendString(out, 3, p.Date)
	out = codec.AppendString(out, 4, p.Time)
	out = codec.AppendString(out, 5, p.Status)
	return out
}

func EncodeID(id uint64) []byte {
	return codec.AppendVarint(nil, 1, id)
}

func EncodeUpdate(id uint64, payload []byte) []byte {
	return codec.AppendMessage(EncodeID(id), 2, payload)
}

func EncodeString(s string) []byte {
	return codec.AppendString(nil, 1, s)
}

func EncodeRevenueQuery(serviceID uint64, date string) []byte {
	return codec.AppendString(EncodeID(serviceID), 2, date)
}

func EncodeLogin(email, password string) []byte {
	return codec.AppendString(EncodeString(email), 2, password)
}

// Response decoders.

// DecodeRecord returns the record in field 1, or false when it is absent.
func DecodeRecord[T any](c codec.Codec[T], b []byte) (T, bool, error) {
	var (
		rec   T
		found bool
	)
	err := codec.Walk(b, func(f codec.Field) error {
		if f.Num != 1 || f.Type != protowire.BytesType {
			return nil
		}
		var err error
		rec, err = c.Decode(f.Bytes)
		found = true
		return err
	})
	return rec, found, err
}

func DecodeRecords[T any](c codec.Codec[T], b []byte) ([]T, error) {
	recs := []T{}
	err := codec.Walk(b, func(f codec.Field) error {
		if f.Num != 1 || f.Type != protowire.BytesType {
			return nil
		}
		rec, err := c.Decode(f.Bytes)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
		return nil
	})
	return recs, err
}

func DecodeVarint(b []byte) (uint64, error) {
	var v uint64
	err := codec.Walk(b, func(f codec.Field) error {
		if f.Num == 1 && f.Type == protowire.VarintType {
			v = f.Varint
		}
		return nil
	})
	return v, err
}

func DecodeString(b []byte) (string, error) {
	var s string
	err := codec.Walk(b, func(f codec.Field) error {
		if f.Num == 1 && f.Type == protowire.BytesType {
			s = string(f.Bytes)
		}
		return nil
	})
	return s, err
}

// Server-side request decoders.

func decodeClientPayload(b []byte) (model.ClientPayload, error) {
	var p model.ClientPayload
	err := codec.Walk(b, func(f codec.Field) error {
		if f.Type != protowire.BytesType {
			return nil
		}
		switch f.Num {
		case 1:
			p.Name = string(f.Bytes)
		case 2:
			p.Email = string(f.Bytes)
		case 3:
			p.Phone = string(f.Bytes)
		case 4:
			p.Address = string(f.Bytes)
		}
		return nil
	})
	return p, err
}

func decodeServicePayload(b []byte) (model.ServicePayload, error) {
	var p model.ServicePayload
	err := codec.Walk(b, func(f codec.Field) error {
		switch {
		case f.Num == 1 && f.Type == protowire.BytesType:
			p.Name = string(f.Bytes)
		case f.Num == 2 && f.Type == protowire.BytesType:
			p.Description = string(f.Bytes)
		case f.Num == 3 && f.Type == protowire.VarintType:
			p.Duration = f.Varint
		case f.Num == 4 && f.Type == protowire.VarintType:
			p.Price = f.Varint
		}
		return nil
	})
	return p, err
}

func decodeAppointmentPayload(b []byte) (model.AppointmentPayload, error) {
	var p model.AppointmentPayload
	err := codec.Walk(b, func(f codec.Field) error {
		switch {
		case f.Num == 1 && f.Type == protowire.VarintType:
			p.ClientID = f.Varint
		case f.Num == 2 && f.Type == protowire.VarintType:
			p.ServiceID = f.Varint
		case f.Num == 3 && f.Type == protowire.BytesType:
			p.Date = string(f.Bytes)
		case f.Num == 4 && f.Type == protowire.BytesType:
			p.Time = string(f.Bytes)
		case f.Num == 5 && f.Type == protowire.BytesType:
			p.Status = string(f.Bytes)
		}
		return nil
	})
	return p, err
}

// decodeUpdate reads the id in field 1 and hands the nested payload in
// field 2 to decode. A missing payload decodes as empty.
func decodeUpdate[P any](b []byte, decode func([]byte) (P, error)) (uint64, P, error) {
	var (
		id    uint64
		inner []byte
	)
	err := codec.Walk(b, func(f codec.Field) error {
		switch {
		case f.Num == 1 && f.Type == protowire.VarintType:
			id = f.Varint
		case f.Num == 2 && f.Type == protowire.BytesType:
			inner = f.Bytes
		}
		return nil
	})
	if err != nil {
		var zero P
		return 0, zero, err
	}
	p, err := decode(inner)
	return id, p, err
}

type revenueQuery struct {
	serviceID uint64
	date      string
}

func decodeRevenueQuery(b []byte) (revenueQuery, error) {
	var q revenueQuery
	err := codec.Walk(b, func(f codec.Field) error {
		switch {
		case f.Num == 1 && f.Type == protowire.VarintType:
			q.serviceID = f.Varint
		case f.Num == 2 && f.Type == protowire.BytesType:
			q.date = string(f.Bytes)
		}
		return nil
	})
	return q, err
}

type loginRequest struct {
	email    string
	password string
}

func decodeLogin(b []byte) (loginRequest, error) {
	var r loginRequest
	err := codec.Walk(b, func(f codec.Field) error {
		if f.Type != protowire.BytesType {
			return nil
		}
		switch f.Num {
		case 1:
			r.email = string(f.Bytes)
		case 2:
			r.password = string(f.Bytes)
		}
		return nil
	})
	return r, err
}

func encodeRecord[T any](c codec.Codec[T], rec *T) ([]byte, error) {
	if rec == nil {
		return []byte{}, nil
	}
	b, err := c.Encode(*rec)
	if err != nil {
		return nil, err
	}
	return codec.AppendMessage(nil, 1, b), nil
}

func encodeRecords[T any](c codec.Codec[T], recs []T) ([]byte, error) {
	out := []byte{}
	for _, rec := range recs {
		b, err := c.Encode(rec)
		if err != nil {
			return nil, err
		}
		out = codec.AppendMessage(out, 1, b)
	}
	return out, nil
}
