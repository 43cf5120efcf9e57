package binutil

import "math"

// LowByte returns the least significant byte of a register word.
func LowByte(w uint16) byte {
	return byte(w)
}

// HighByte returns the most significant byte of a register word.
func HighByte(w uint16) byte {
	return byte(w >> 8)
}

// ParseUint16BigEndian AB
func ParseUint16BigEndian(buf []byte) uint16 {
	return uint16(buf[0])<<8 + uint16(buf[1])
}

// ParseUint16LittleEndian BA
func ParseUint16LittleEndian(buf []byte) uint16 {
	return uint16(buf[1])<<8 + uint16(buf[0])
}

// ParseUint32BigEndian ABCD
func ParseUint32BigEndian(buf []byte) uint32 {
	return uint32(buf[0])<<24 +
		uint32(buf[1])<<16 +
		uint32(buf[2])<<8 +
		uint32(buf[3])
}

// ParseFloat32BigEndian ABCD
func ParseFloat32BigEndian(buf []byte) float32 {
	return math.Float32frombits(ParseUint32BigEndian(buf))
}

// WriteUint16 writes v big-endian into the first two bytes of buf.
func WriteUint16(buf []byte, v uint16) {
	buf[0] = byte(v >> 8)
	buf[1] = byte(v)
}

// Uint32ToBytes 编码
func Uint32ToBytes(value uint32) []byte {
	buf := make([]byte, 4)
	buf[0] = byte(value >> 24)
	buf[1] = byte(value >> 16)
	buf[2] = byte(value >> 8)
	buf[3] = byte(value)
	return buf
}

// Words splits big-endian register bytes into words. A trailing odd byte is ignored.
func Words(buf []byte) []uint16 {
	words := make([]uint16, len(buf)/2)
	for i := range words {
		words[i] = ParseUint16BigEndian(buf[i*2:])
	}
	return words
}

// WordsToBytes is the inverse of Words.
func WordsToBytes(words []uint16) []byte {
	buf := make([]byte, len(words)*2)
	for i, w := range words {
		WriteUint16(buf[i*2:], w)
	}
	return buf
}
