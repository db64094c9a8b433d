package medium

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/xxh3"
)

// Compression selects how File frame payloads are stored. Each frame records
// its own type, so a log written under one setting replays under any other.
type Compression uint8

const (
	NoCompression Compression = 0x0
	Snappy        Compression = 0x1
	LZ4           Compression = 0x4
	Zstd          Compression = 0x7
)

func (c Compression) String() string {
	switch c {
	case NoCompression:
		return "none"
	case Snappy:
		return "snappy"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NoCompression, nil
	case "snappy":
		return Snappy, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("unsupported compression %q", s)
	}
}

// compressor keeps one zstd encoder/decoder pair; both are safe for
// concurrent EncodeAll/DecodeAll.
type compressor struct {
	once sync.Once
	enc  *zstd.Encoder
	dec  *zstd.Decoder
	err  error
}

func (c *compressor) zstd() (*zstd.Encoder, *zstd.Decoder, error) {
	c.once.Do(func() {
		c.enc, c.err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if c.err != nil {
			return
		}
		c.dec, c.err = zstd.NewReader(nil)
	})
	return c.enc, c.dec, c.err
}

func (c *compressor) close() {
	if c.dec != nil {
		c.dec.Close()
	}
	if c.enc != nil {
		c.enc.Close()
	}
}

func (c *compressor) compress(t Compression, data []byte) ([]byte, error) {
	switch t {
	case NoCompression:
		return data, nil
	case Snappy:
		return snappy.Encode(nil, data), nil
	case LZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 close: %w", err)
		}
		return buf.Bytes(), nil
	case Zstd:
		enc, _, err := c.zstd()
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", t)
	}
}

func (c *compressor) decompress(t Compression, data []byte) ([]byte, error) {
	switch t {
	case NoCompression:
		return data, nil
	case Snappy:
		return snappy.Decode(nil, data)
	case LZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	case Zstd:
		_, dec, err := c.zstd()
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return dec.DecodeAll(data, nil)
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", t)
	}
}

// Log operations.
const (
	opScalar byte = 1
	opWrite  byte = 2
	opErase  byte = 3
)

// mutation is one logged change. For opScalar, key carries the new value.
type mutation struct {
	op     byte
	region uint8
	key    uint64
	value  []byte
}

func (m mutation) marshal() []byte {
	b := make([]byte, 0, 2+binary.MaxVarintLen64+len(m.value))
	b = append(b, m.op, m.region)
	b = binary.AppendUvarint(b, m.key)
	return append(b, m.value...)
}

func parseMutation(b []byte) (mutation, error) {
	if len(b) < 3 {
		return mutation{}, errCorruptFrame
	}
	m := mutation{op: b[0], region: b[1]}
	key, n := binary.Uvarint(b[2:])
	if n <= 0 {
		return mutation{}, errCorruptFrame
	}
	m.key = key
	rest := b[2+n:]
	switch m.op {
	case opScalar, opErase:
		if len(rest) != 0 {
			return mutation{}, errCorruptFrame
		}
	case opWrite:
		m.value = rest
	default:
		return mutation{}, errCorruptFrame
	}
	return m, nil
}

func (s *state) apply(m mutation) {
	switch m.op {
	case opScalar:
		s.scalars[m.region] = m.key
	case opWrite:
		s.write(m.region, m.key, m.value)
	case opErase:
		s.erase(m.region, m.key)
	}
}

// Frame layout: xxh3(8) | payload length(4) | compression(1) | payload.
// The checksum covers everything after itself.
const frameHeaderSize = 13

var errCorruptFrame = errors.New("medium: corrupt frame")

func (c *compressor) encodeFrame(t Compression, m mutation) ([]byte, error) {
	payload, err := c.compress(t, m.marshal())
	if err != nil {
		return nil, err
	}
	frame := make([]byte, frameHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(frame[8:12], uint32(len(payload)))
	frame[12] = byte(t)
	copy(frame[frameHeaderSize:], payload)
	binary.LittleEndian.PutUint64(frame[0:8], xxh3.Hash(frame[8:]))
	return frame, nil
}

// decodeFrame parses the frame at the head of b and returns its length.
func (c *compressor) decodeFrame(b []byte) (mutation, int, error) {
	if len(b) < frameHeaderSize {
		return mutation{}, 0, io.ErrUnexpectedEOF
	}
	size := frameHeaderSize + int(binary.LittleEndian.Uint32(b[8:12]))
	if size > len(b) {
		return mutation{}, 0, io.ErrUnexpectedEOF
	}
	if binary.LittleEndian.Uint64(b[0:8]) != xxh3.Hash(b[8:size]) {
		return mutation{}, 0, errCorruptFrame
	}
	raw, err := c.decompress(Compression(b[12]), b[frameHeaderSize:size])
	if err != nil {
		return mutation{}, 0, fmt.Errorf("%w: %v", errCorruptFrame, err)
	}
	m, err := parseMutation(raw)
	if err != nil {
		return mutation{}, 0, err
	}
	return m, size, nil
}
