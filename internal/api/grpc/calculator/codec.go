package calculator

import "encoding/json"

// CodecName — content-subtype сообщений CalculatorService (application/grpc+json).
const CodecName = "json"

// Codec кодирует сообщения сервиса в JSON. Сервер включает его через grpc.ForceServerCodec,
// клиент — через grpc.ForceCodec, поэтому protobuf-кодек в этом сервисе не участвует.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (Codec) Name() string { return CodecName }
