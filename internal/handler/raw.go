package handler

// RawMessage carries already-encoded protobuf bytes.
type RawMessage struct{ Data []byte }

// RawCodec passes bytes through without marshal/unmarshal. The server must be
// built with grpc.ForceServerCodec(RawCodec{}) and clients call with
// grpc.ForceCodec(RawCodec{}).
type RawCodec struct{}

func (RawCodec) Marshal(v any) ([]byte, error) {
	return v.(*RawMessage).Data, nil
}

func (RawCodec) Unmarshal(data []byte, v any) error {
	m := v.(*RawMessage)
	m.Data = append([]byte(nil), data...)
	return nil
}

func (RawCodec) Name() string { return "raw" }
