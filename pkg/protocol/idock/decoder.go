package idock

import (
	"math"

	idockruntime "weldgateway/pkg/protocol/idock/runtime"
	"weldgateway/pkg/utils/binutil"
)

// Decode turns one register block into Telemetry. The block must be exactly
// idockruntime.WordCount words long; nothing is returned for any other length.
//
// Float i is carried by words w[2i] and w[2i+1]. Its big-endian IEEE-754 bytes
// are lo(w[2i+1]) hi(w[2i+1]) lo(w[2i]) hi(w[2i]), which is neither a plain
// big- nor little-endian layout.
func Decode(block []uint16) (*idockruntime.Telemetry, error) {
	if len(block) != idockruntime.WordCount {
		reason := idockruntime.ReasonUnexpectedLength
		if len(block) < idockruntime.WordCount {
			reason = idockruntime.ReasonShortRead
		}
		return nil, &idockruntime.DecodeError{Reason: reason, Got: len(block), Want: idockruntime.WordCount}
	}

	t := &idockruntime.Telemetry{}
	buf := make([]byte, 4)
	for i := 0; i < idockruntime.FloatCount; i++ {
		first, second := block[i*2], block[i*2+1]
		buf[0] = binutil.LowByte(second)
		buf[1] = binutil.HighByte(second)
		buf[2] = binutil.LowByte(first)
		buf[3] = binutil.HighByte(first)
		t.Floats[i] = binutil.ParseFloat32BigEndian(buf)
	}

	for j := 0; j < idockruntime.DigitalWords; j++ {
		w := block[idockruntime.FloatWords+j]
		t.Digital[j*2] = binutil.LowByte(w)
		if j*2+1 < idockruntime.DigitalCount {
			t.Digital[j*2+1] = binutil.HighByte(w)
		}
	}

	t.Address = block[idockruntime.AddressWordIndex]
	return t, nil
}

// EncodeFloat is the inverse of the float layout used by Decode.
func EncodeFloat(f float32) (first, second uint16) {
	b := binutil.Uint32ToBytes(math.Float32bits(f))
	second = uint16(b[1])<<8 | uint16(b[0])
	first = uint16(b[3])<<8 | uint16(b[2])
	return first, second
}

// Encode builds the register block a board would return for t.
func Encode(t *idockruntime.Telemetry) []uint16 {
	block := make([]uint16, idockruntime.WordCount)
	for i, f := range t.Floats {
		block[i*2], block[i*2+1] = EncodeFloat(f)
	}
	for j := 0; j < idockruntime.DigitalWords; j++ {
		w := uint16(t.Digital[j*2])
		if j*2+1 < idockruntime.DigitalCount {
			w |= uint16(t.Digital[j*2+1]) << 8
		}
		block[idockruntime.FloatWords+j] = w
	}
	block[idockruntime.AddressWordIndex] = t.Address
	return block
}
