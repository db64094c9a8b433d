// Package codec serializes records to protobuf wire format.
//
// Encodings are deterministic: every field is written in field-number order,
// strings and ids always, timestamps only when set. Timestamps come back in
// UTC.
package codec

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"salon-scheduler/internal/model"
)

// MaxRecordSize bounds every encoded record.
const MaxRecordSize = 1024

var (
	ErrTooLarge = errors.New("codec: record exceeds size bound")
	ErrCorrupt  = errors.New("codec: malformed record")
)

type Codec[T any] interface {
	Encode(rec T) ([]byte, error)
	Decode(b []byte) (T, error)
}

var (
	Client      Codec[model.Client]      = clientCodec{}
	Service     Codec[model.Service]     = serviceCodec{}
	Appointment Codec[model.Appointment] = appointmentCodec{}
)

func bounded(b []byte) ([]byte, error) {
	if len(b) > MaxRecordSize {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(b), MaxRecordSize)
	}
	return b, nil
}

type clientCodec struct{}

func (clientCodec) Encode(c model.Client) ([]byte, error) {
	var out []byte
	out = AppendVarint(out, 1, c.ID)
	out = AppendString(out, 2, c.Name)
	out = AppendString(out, 3, c.Email)
	out = AppendString(out, 4, c.Phone)
	out = AppendString(out, 5, c.Address)
	return bounded(out)
}

func (clientCodec) Decode(b []byte) (model.Client, error) {
	var c model.Client
	err := Walk(b, func(f Field) error {
		switch {
		case f.Num == 1 && f.Type == protowire.VarintType:
			c.ID = f.Varint
		case f.Num == 2 && f.Type == protowire.BytesType:
			c.Name = string(f.Bytes)
		case f.Num == 3 && f.Type == protowire.BytesType:
			c.Email = string(f.Bytes)
		case f.Num == 4 && f.Type == protowire.BytesType:
			c.Phone = string(f.Bytes)
		case f.Num == 5 && f.Type == protowire.BytesType:
			c.Address = string(f.Bytes)
		}
		return nil
	})
	return c, err
}

type serviceCodec struct{}

func (serviceCodec) Encode(s model.Service) ([]byte, error) {
	var out []byte
	out = AppendVarint(out, 1, s.ID)
	out = AppendString(out, 2, s.Name)
	out = AppendString(out, 3, s.Description)
	out = AppendVarint(out, 4, s.Duration)
	out = AppendVarint(out, 5, s.Price)
	return bounded(out)
}

func (serviceCodec) Decode(b []byte) (model.Service, error) {
	var s model.Service
	err := Walk(b, func(f Field) error {
		switch {
		case f.Num == 1 && f.Type == protowire.VarintType:
			s.ID = f.Varint
		case f.Num == 2 && f.Type == protowire.BytesType:
			s.Name = string(f.Bytes)
		case f.Num == 3 && f.Type == protowire.BytesType:
			s.Description = string(f.Bytes)
		case f.Num == 4 && f.Type == protowire.VarintType:
			s.Duration = f.Varint
		case f.Num == 5 && f.Type == protowire.VarintType:
			s.Price = f.Varint
		}
		return nil
	})
	return s, err
}

type appointmentCodec struct{}

func (appointmentCodec) Encode(a model.Appointment) ([]byte, error) {
	var out []byte
	out = AppendVarint(out, 1, a.ID)
	out = AppendVarint(out, 2, a.ClientID)
	out = AppendVarint(out, 3, a.ServiceID)
	out = AppendString(out, 4, a.Date)
	out = AppendString(out, 5, a.Time)
	out = AppendString(out, 6, a.Status)
	out = AppendTimestamp(out, 7, a.CreatedAt)
	out = AppendTimestamp(out, 8, a.UpdatedAt)
	return bounded(out)
}

func (appointmentCodec) Decode(b []byte) (model.Appointment, error) {
	var a model.Appointment
	err := Walk(b, func(f Field) error {
		var err error
		switch {
		case f.Num == 1 && f.Type == protowire.VarintType:
			a.ID = f.Varint
		case f.Num == 2 && f.Type == protowire.VarintType:
			a.ClientID = f.Varint
		case f.Num == 3 && f.Type == protowire.VarintType:
			a.ServiceID = f.Varint
		case f.Num == 4 && f.Type == protowire.BytesType:
			a.Date = string(f.Bytes)
		case f.Num == 5 && f.Type == protowire.BytesType:
			a.Time = string(f.Bytes)
		case f.Num == 6 && f.Type == protowire.BytesType:
			a.Status = string(f.Bytes)
		case f.Num == 7 && f.Type == protowire.BytesType:
			a.CreatedAt, err = ParseTimestamp(f.Bytes)
		case f.Num == 8 && f.Type == protowire.BytesType:
			a.UpdatedAt, err = ParseTimestamp(f.Bytes)
		}
		return err
	})
	return a, err
}
