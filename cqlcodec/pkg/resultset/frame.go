package resultset

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/datastax/go-cassandra-native-protocol/compression/snappy"
	"github.com/datastax/go-cassandra-native-protocol/frame"
	"github.com/datastax/go-cassandra-native-protocol/message"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"github.com/datastax/go-cassandra-native-protocol/segment"
	log "github.com/sirupsen/logrus"
)

var defaultFrameCodec = frame.NewRawCodec()
var defaultSegmentCodec = segment.NewCodec()

var frameCodecs = map[primitive.Compression]frame.RawCodec{
	primitive.CompressionNone:       defaultFrameCodec,
	primitive.CompressionLz4:        frame.NewRawCodecWithCompression(lz4Compressor{}),
	primitive.CompressionSnappy:     frame.NewRawCodecWithCompression(snappy.Compressor{}),
	primitive.Compression("none"):   defaultFrameCodec,
	primitive.Compression("lz4"):    frame.NewRawCodecWithCompression(lz4Compressor{}),
	primitive.Compression("snappy"): frame.NewRawCodecWithCompression(snappy.Compressor{}),
}

// Protocol v5 compresses whole segments instead of frames and does not support snappy.
var segmentCodecs = map[primitive.Compression]segment.Codec{
	primitive.CompressionNone:     defaultSegmentCodec,
	primitive.CompressionLz4:      segment.NewCodecWithCompression(lz4Compressor{}),
	primitive.Compression("none"): defaultSegmentCodec,
	primitive.Compression("lz4"):  segment.NewCodecWithCompression(lz4Compressor{}),
}

func getFrameCodec(compression primitive.Compression) (frame.RawCodec, error) {
	codec, ok := frameCodecs[compression]
	if !ok {
		return nil, fmt.Errorf("no codec for compression: %v", compression)
	}
	return codec, nil
}

func getSegmentCodec(compression primitive.Compression) (segment.Codec, error) {
	codec, ok := segmentCodecs[compression]
	if !ok {
		return nil, fmt.Errorf("unknown segment compression %v", compression)
	}
	return codec, nil
}

func isCompressed(compression primitive.Compression) bool {
	return compression != "" && compression != primitive.CompressionNone && compression != primitive.Compression("none")
}

// WriteRowsResult writes result as a RESULT response frame. From protocol v5 on the frame is wrapped in segments:
// a single self-contained segment when it fits, otherwise as many non self-contained segments as needed.
func WriteRowsResult(
	dest io.Writer, result *message.RowsResult, version primitive.ProtocolVersion, compression primitive.Compression) error {
	if result == nil {
		return errors.New("cannot write a nil rows result")
	}
	f := frame.NewFrame(version, 0, result)

	if !version.SupportsModernFramingLayout() {
		codec, err := getFrameCodec(compression)
		if err != nil {
			return err
		}
		if isCompressed(compression) {
			f.SetCompress(true)
		}
		if err = codec.EncodeFrame(f, dest); err != nil {
			return fmt.Errorf("could not encode rows result frame: %w", err)
		}
		return nil
	}

	segmentCodec, err := getSegmentCodec(compression)
	if err != nil {
		return err
	}
	envelope := &bytes.Buffer{}
	// segments are compressed as a whole, the envelope itself never is
	if err = defaultFrameCodec.EncodeFrame(f, envelope); err != nil {
		return fmt.Errorf("could not encode rows result envelope: %w", err)
	}

	payload := envelope.Bytes()
	selfContained := len(payload) <= segment.MaxPayloadLength
	for offset := 0; offset < len(payload); offset += segment.MaxPayloadLength {
		end := offset + segment.MaxPayloadLength
		if end > len(payload) {
			end = len(payload)
		}
		seg := &segment.Segment{
			Payload: &segment.Payload{UncompressedData: payload[offset:end]},
			Header:  &segment.Header{IsSelfContained: selfContained},
		}
		if err = segmentCodec.EncodeSegment(seg, dest); err != nil {
			return fmt.Errorf("could not encode segment at offset %d: %w", offset, err)
		}
	}
	log.Debugf("Rows result envelope of %d bytes written in segments (self contained: %v).",
		len(payload), selfContained)
	return nil
}

// ReadRowsResult reads one response frame written with the same protocol version and compression and returns its
// RESULT Rows message.
func ReadRowsResult(
	source io.Reader, version primitive.ProtocolVersion, compression primitive.Compression) (*message.RowsResult, error) {
	var f *frame.Frame
	if !version.SupportsModernFramingLayout() {
		codec, err := getFrameCodec(compression)
		if err != nil {
			return nil, err
		}
		f, err = codec.DecodeFrame(source)
		if err != nil {
			return nil, fmt.Errorf("could not decode rows result frame: %w", err)
		}
	} else {
		segmentCodec, err := getSegmentCodec(compression)
		if err != nil {
			return nil, err
		}
		acc := newEnvelopeAccumulator(defaultFrameCodec, version)
		for !acc.FrameReady() {
			seg, err := segmentCodec.DecodeSegment(source)
			if err != nil {
				return nil, fmt.Errorf("could not decode segment: %w", err)
			}
			if err = acc.WriteSegmentPayload(seg.Payload.UncompressedData); err != nil {
				return nil, err
			}
		}
		f, err = acc.ReadFrame()
		if err != nil {
			return nil, err
		}
	}

	if f.Header.Version != version {
		return nil, fmt.Errorf("expected protocol version %v but frame has %v", version, f.Header.Version)
	}
	result, ok := f.Body.Message.(*message.RowsResult)
	if !ok {
		return nil, fmt.Errorf("expected RESULT Rows but got %v", f.Body.Message)
	}
	return result, nil
}

// envelopeAccumulator rebuilds one frame from the payloads of consecutive segments.
type envelopeAccumulator struct {
	buf          *bytes.Buffer
	hdr          *frame.Header
	headerLength int
	codec        frame.RawCodec
}

func newEnvelopeAccumulator(codec frame.RawCodec, version primitive.ProtocolVersion) *envelopeAccumulator {
	return &envelopeAccumulator{
		buf:          &bytes.Buffer{},
		hdr:          nil,
		headerLength: version.FrameHeaderLengthInBytes(),
		codec:        codec,
	}
}

func (a *envelopeAccumulator) FrameReady() bool {
	return a.hdr != nil && a.buf.Len() >= a.headerLength+int(a.hdr.BodyLength)
}

func (a *envelopeAccumulator) WriteSegmentPayload(payload []byte) error {
	a.buf.Write(payload)
	if a.hdr == nil && a.buf.Len() >= a.headerLength {
		hdr, err := a.codec.DecodeHeader(bytes.NewReader(a.buf.Bytes()[:a.headerLength]))
		if err != nil {
			return fmt.Errorf("cannot read frame header in multipart segment: %w", err)
		}
		a.hdr = hdr
	}
	return nil
}

func (a *envelopeAccumulator) ReadFrame() (*frame.Frame, error) {
	if !a.FrameReady() {
		return nil, errors.New("frame is not ready")
	}
	envelopeLength := a.headerLength + int(a.hdr.BodyLength)
	if extra := a.buf.Len() - envelopeLength; extra > 0 {
		log.Debugf("Ignoring %d bytes following the rows result envelope.", extra)
	}
	f, err := a.codec.DecodeFrame(bytes.NewReader(a.buf.Bytes()[:envelopeLength]))
	if err != nil {
		return nil, fmt.Errorf("could not decode rows result envelope: %w", err)
	}
	return f, nil
}
