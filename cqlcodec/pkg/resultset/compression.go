package resultset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	protolz4 "github.com/datastax/go-cassandra-native-protocol/compression/lz4"
	"github.com/datastax/go-cassandra-native-protocol/segment"
	"github.com/pierrec/lz4/v4"
)

// maxDecompressedBodyLength matches the largest frame body Cassandra accepts (native_transport_max_frame_size).
const maxDecompressedBodyLength = 256 * 1024 * 1024

// lz4Compressor compresses like protolz4.Compressor but sizes the decompression buffer from a known bound instead
// of a multiple of the compressed length. Frame bodies carry their uncompressed length in a 4 byte prefix and segment
// payloads never exceed segment.MaxPayloadLength.
type lz4Compressor struct {
	protolz4.Compressor
}

func (c lz4Compressor) Decompress(source io.Reader, dest io.Writer) error {
	compressed, err := readAll(source)
	if err != nil {
		return fmt.Errorf("cannot read compressed payload: %w", err)
	}
	decompressed := make([]byte, segment.MaxPayloadLength)
	written, err := lz4.UncompressBlock(compressed, decompressed)
	if err != nil {
		return fmt.Errorf("cannot decompress payload: %w", err)
	}
	if _, err = dest.Write(decompressed[:written]); err != nil {
		return fmt.Errorf("cannot write decompressed payload: %w", err)
	}
	return nil
}

func (c lz4Compressor) DecompressWithLength(source io.Reader, dest io.Writer) error {
	var length uint32
	if err := binary.Read(source, binary.BigEndian, &length); err != nil {
		return fmt.Errorf("cannot read decompressed length: %w", err)
	}
	compressed, err := readAll(source)
	if err != nil {
		return fmt.Errorf("cannot read compressed body: %w", err)
	}
	if length == 0 {
		// an empty body is compressed into a single byte which is discarded
		return nil
	}
	if length > maxDecompressedBodyLength {
		return fmt.Errorf("decompressed body length %d exceeds maximum of %d", length, maxDecompressedBodyLength)
	}
	decompressed := make([]byte, length)
	written, err := lz4.UncompressBlock(compressed, decompressed)
	if err != nil {
		return fmt.Errorf("cannot decompress body: %w", err)
	}
	if written != int(length) {
		return fmt.Errorf("decompressed body has %d bytes but %d were announced", written, length)
	}
	if _, err = dest.Write(decompressed); err != nil {
		return fmt.Errorf("cannot write decompressed body: %w", err)
	}
	return nil
}

func readAll(source io.Reader) ([]byte, error) {
	if buf, ok := source.(*bytes.Buffer); ok {
		return buf.Bytes(), nil
	}
	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(source); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
