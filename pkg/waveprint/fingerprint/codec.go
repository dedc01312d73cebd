package fingerprint

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Serialized fingerprint layout: 4-byte magic, 1-byte version, 1-byte
// codeword width, little-endian uint32 codeword count, then each codeword
// as its low width bits in ceil(width/8) little-endian bytes.
const (
	codecMagic   = "WFPR"
	codecVersion = 1
	headerSize   = 4 + 1 + 1 + 4
)

var (
	ErrBadMagic   = errors.New("not a serialized fingerprint")
	ErrBadVersion = errors.New("unsupported fingerprint version")
	ErrTruncated  = errors.New("serialized fingerprint is truncated")
)

// Marshal encodes seq for storage or transport. width is the codeword width
// in bits, normally Config.CodewordWidth, and must lie within 1 to 64.
func Marshal(seq Sequence, width int) ([]byte, error) {
	if width < 1 || width > 64 {
		return nil, &ConfigurationError{Param: "CodewordWidth", Reason: "must be between 1 and 64"}
	}

	wordBytes := (width + 7) / 8
	out := make([]byte, headerSize, headerSize+len(seq)*wordBytes)
	copy(out, codecMagic)
	out[4] = codecVersion
	out[5] = byte(width)
	binary.LittleEndian.PutUint32(out[6:10], uint32(len(seq)))

	var buf [8]byte
	for _, w := range seq {
		binary.LittleEndian.PutUint64(buf[:], uint64(w))
		out = append(out, buf[:wordBytes]...)
	}
	return out, nil
}

// Unmarshal decodes data produced by Marshal, returning the sequence and
// the codeword width it was written with.
func Unmarshal(data []byte) (Sequence, int, error) {
	if len(data) < headerSize {
		return nil, 0, ErrTruncated
	}
	if string(data[:4]) != codecMagic {
		return nil, 0, ErrBadMagic
	}
	if data[4] != codecVersion {
		return nil, 0, fmt.Errorf("%w: %d", ErrBadVersion, data[4])
	}

	width := int(data[5])
	if width < 1 || width > 64 {
		return nil, 0, fmt.Errorf("invalid codeword width %d", width)
	}

	count := int(binary.LittleEndian.Uint32(data[6:10]))
	wordBytes := (width + 7) / 8
	body := data[headerSize:]
	if len(body) != count*wordBytes {
		return nil, 0, ErrTruncated
	}

	seq := make(Sequence, count)
	for i := 0; i < count; i++ {
		var buf [8]byte
		copy(buf[:], body[i*wordBytes:(i+1)*wordBytes])
		seq[i] = Codeword(binary.LittleEndian.Uint64(buf[:]))
	}
	return seq, width, nil
}
