package protector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	errMalformedEnvelope = errors.New("malformed envelope")
	errFieldTooLarge     = errors.New("envelope field exceeds length prefix")

	// maxFieldLen is the largest field a uint32 length prefix can describe.
	maxFieldLen uint64 = math.MaxUint32
)

type envelope struct {
	Payload      string
	Timestamp    int64 // unix millis at generation
	Jurisdiction string
}

// encode writes each field as a big-endian uint32 length followed by its
// bytes. Payloads may contain any byte, so no delimiter is needed.
func (e envelope) encode() ([]byte, error) {
	ts := strconv.FormatInt(e.Timestamp, 10)
	fields := []string{e.Payload, ts, e.Jurisdiction}

	size := 0
	for i, f := range fields {
		if uint64(len(f)) > maxFieldLen {
			return nil, fmt.Errorf("%w: field %d is %d bytes", errFieldTooLarge, i, len(f))
		}
		size += 4 + len(f)
	}
	b := make([]byte, 0, size)
	for _, f := range fields {
		b = binary.BigEndian.AppendUint32(b, uint32(len(f)))
		b = append(b, f...)
	}
	return b, nil
}

func decodeEnvelope(b []byte) (envelope, error) {
	var fields [3]string
	for i := range fields {
		if len(b) < 4 {
			return envelope{}, errMalformedEnvelope
		}
		n := binary.BigEndian.Uint32(b[:4])
		b = b[4:]
		if uint64(n) > uint64(len(b)) {
			return envelope{}, errMalformedEnvelope
		}
		fields[i] = string(b[:n])
		b = b[n:]
	}
	if len(b) != 0 {
		return envelope{}, errMalformedEnvelope
	}

	ts, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return envelope{}, errMalformedEnvelope
	}
	return envelope{Payload: fields[0], Timestamp: ts, Jurisdiction: fields[2]}, nil
}
