package pvocex

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-pvoc/pvoc/frame"
)

var (
	ErrFormat      = errors.New("pvocex: not a PVOC-EX file")
	ErrUnsupported = errors.New("pvocex: unsupported analysis data")
	ErrTruncated   = errors.New("pvocex: truncated file")
)

// SubFormat is the PVOC-EX sub-format GUID 8312B9C2-2E6E-11d4-A824-DE5B96C3AB21
// in its on-disk byte order.
var SubFormat = [16]byte{
	0xC2, 0xB9, 0x12, 0x83,
	0x6E, 0x2E,
	0xD4, 0x11,
	0xA8, 0x24, 0xDE, 0x5B, 0x96, 0xC3, 0xAB, 0x21,
}

const (
	formatExtensible = 0xFFFE
	formatIEEEFloat  = 3

	fmtChunkSize  = 80
	extensionSize = 62
	version       = 1
	pvocDataSize  = 32

	WordFloat  = 0
	WordDouble = 1

	AnalysisAmpFreq    = 0
	AnalysisAmpPhase   = 1
	AnalysisComplex    = 2
	headerBytes        = 12 + 8 + fmtChunkSize + 8
	bytesPerFloatValue = 4
)

// Meta is the raw PVOC-EX format information of a file.
type Meta struct {
	Channels       uint16
	SampleRate     uint32
	WordFormat     uint16
	AnalysisFormat uint16
	SourceFormat   uint16
	WindowType     uint16
	AnalysisBins   uint32
	WindowLength   uint32
	Overlap        uint32
	FrameAlign     uint32
	AnalysisRate   float32
	WindowParam    float32
}

// FrameSize returns the implied transform length.
func (m Meta) FrameSize() int { return int(m.AnalysisBins-1) * 2 }

// Header converts m to a frame header.
func (m Meta) Header() frame.Header {
	return frame.Header{
		FrameSize:    m.FrameSize(),
		Overlap:      int(m.Overlap),
		SampleRate:   float64(m.SampleRate),
		Channels:     int(m.Channels),
		WindowLength: int(m.WindowLength),
		WindowType:   int(m.WindowType),
	}
}

// ReadFile reads the PVOC-EX file at path. The frame file is named after the
// base name of path.
func ReadFile(path string) (*frame.File, Meta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("pvocex: %w", err)
	}

	f, meta, err := Decode(filepath.Base(path), b)
	if err != nil {
		return nil, meta, fmt.Errorf("%s: %w", path, err)
	}

	return f, meta, nil
}

// Read decodes a PVOC-EX stream.
func Read(r io.Reader, name string) (*frame.File, Meta, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("pvocex: %w", err)
	}

	return Decode(name, b)
}

// Decode parses a complete PVOC-EX file image.
func Decode(name string, b []byte) (*frame.File, Meta, error) {
	var meta Meta

	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return nil, meta, fmt.Errorf("%w: missing RIFF/WAVE header", ErrFormat)
	}

	var (
		haveFmt bool
		payload []byte
	)

	for rest := b[12:]; len(rest) > 0; {
		if len(rest) < 8 {
			return nil, meta, fmt.Errorf("%w: chunk header", ErrTruncated)
		}

		id := string(rest[0:4])
		size := int(binary.LittleEndian.Uint32(rest[4:8]))
		rest = rest[8:]

		if size > len(rest) {
			return nil, meta, fmt.Errorf("%w: chunk %q wants %d bytes, %d left", ErrTruncated, id, size, len(rest))
		}

		body := rest[:size]

		switch id {
		case "fmt ":
			m, err := parseFormat(body)
			if err != nil {
				return nil, meta, err
			}

			meta, haveFmt = m, true
		case "data":
			payload = body
		}

		// Chunks are padded to even length.
		skip := size + size&1
		if skip > len(rest) {
			skip = len(rest)
		}

		rest = rest[skip:]
	}

	if !haveFmt {
		return nil, meta, fmt.Errorf("%w: no fmt chunk", ErrFormat)
	}

	if payload == nil {
		return nil, meta, fmt.Errorf("%w: no data chunk", ErrFormat)
	}

	if len(payload)%bytesPerFloatValue != 0 {
		return nil, meta, fmt.Errorf("%w: data chunk of %d bytes", ErrTruncated, len(payload))
	}

	data := make([]float32, len(payload)/bytesPerFloatValue)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}

	f, err := frame.NewFile(name, meta.Header(), data)
	if err != nil {
		return nil, meta, fmt.Errorf("pvocex: %w", err)
	}

	return f, meta, nil
}

func parseFormat(b []byte) (Meta, error) {
	var m Meta

	if len(b) < fmtChunkSize {
		return m, fmt.Errorf("%w: fmt chunk of %d bytes", ErrFormat, len(b))
	}

	le := binary.LittleEndian

	if tag := le.Uint16(b[0:2]); tag != formatExtensible {
		return m, fmt.Errorf("%w: format tag 0x%04X", ErrFormat, tag)
	}

	if cb := le.Uint16(b[16:18]); cb < extensionSize {
		return m, fmt.Errorf("%w: extension size %d", ErrFormat, cb)
	}

	if !bytes.Equal(b[24:40], SubFormat[:]) {
		return m, fmt.Errorf("%w: sub-format GUID", ErrFormat)
	}

	m.Channels = le.Uint16(b[2:4])
	m.SampleRate = le.Uint32(b[4:8])

	if v := le.Uint32(b[40:44]); v != version {
		return m, fmt.Errorf("%w: version %d", ErrUnsupported, v)
	}

	m.WordFormat = le.Uint16(b[48:50])
	m.AnalysisFormat = le.Uint16(b[50:52])
	m.SourceFormat = le.Uint16(b[52:54])
	m.WindowType = le.Uint16(b[54:56])
	m.AnalysisBins = le.Uint32(b[56:60])
	m.WindowLength = le.Uint32(b[60:64])
	m.Overlap = le.Uint32(b[64:68])
	m.FrameAlign = le.Uint32(b[68:72])
	m.AnalysisRate = math.Float32frombits(le.Uint32(b[72:76]))
	m.WindowParam = math.Float32frombits(le.Uint32(b[76:80]))

	if m.WordFormat != WordFloat {
		return m, fmt.Errorf("%w: word format %d", ErrUnsupported, m.WordFormat)
	}

	if m.AnalysisFormat != AnalysisAmpFreq {
		return m, fmt.Errorf("%w: analysis format %d", ErrUnsupported, m.AnalysisFormat)
	}

	if m.AnalysisBins < 2 {
		return m, fmt.Errorf("%w: %d analysis bins", ErrFormat, m.AnalysisBins)
	}

	return m, nil
}

// MetaFor returns the PVOC-EX format information written for f.
func MetaFor(f *frame.File) Meta {
	hdr := f.Header()
	bins := uint32(hdr.Bins())

	return Meta{
		Channels:       uint16(hdr.Channels),
		SampleRate:     uint32(math.Round(hdr.SampleRate)),
		WordFormat:     WordFloat,
		AnalysisFormat: AnalysisAmpFreq,
		SourceFormat:   formatIEEEFloat,
		WindowType:     uint16(hdr.WindowType),
		AnalysisBins:   bins,
		WindowLength:   uint32(hdr.WindowLength),
		Overlap:        uint32(hdr.Overlap),
		FrameAlign:     bins * 2 * bytesPerFloatValue,
		AnalysisRate:   float32(hdr.SampleRate / float64(hdr.Overlap)),
	}
}

// Encode returns the PVOC-EX image of f.
func Encode(f *frame.File) []byte {
	m := MetaFor(f)
	data := f.Data()
	dataBytes := uint32(len(data) * bytesPerFloatValue)

	le := binary.LittleEndian
	b := make([]byte, 0, headerBytes+int(dataBytes))

	b = append(b, "RIFF"...)
	b = le.AppendUint32(b, headerBytes-8+dataBytes)
	b = append(b, "WAVE"...)

	b = append(b, "fmt "...)
	b = le.AppendUint32(b, fmtChunkSize)
	b = le.AppendUint16(b, formatExtensible)
	b = le.AppendUint16(b, m.Channels)
	b = le.AppendUint32(b, m.SampleRate)
	b = le.AppendUint32(b, uint32(float32(m.FrameAlign)*m.AnalysisRate))
	b = le.AppendUint16(b, m.Channels*bytesPerFloatValue)
	b = le.AppendUint16(b, 32)
	b = le.AppendUint16(b, extensionSize)
	b = le.AppendUint16(b, 32)
	b = le.AppendUint32(b, 0)
	b = append(b, SubFormat[:]...)
	b = le.AppendUint32(b, version)
	b = le.AppendUint32(b, pvocDataSize)
	b = le.AppendUint16(b, m.WordFormat)
	b = le.AppendUint16(b, m.AnalysisFormat)
	b = le.AppendUint16(b, m.SourceFormat)
	b = le.AppendUint16(b, m.WindowType)
	b = le.AppendUint32(b, m.AnalysisBins)
	b = le.AppendUint32(b, m.WindowLength)
	b = le.AppendUint32(b, m.Overlap)
	b = le.AppendUint32(b, m.FrameAlign)
	b = le.AppendUint32(b, math.Float32bits(m.AnalysisRate))
	b = le.AppendUint32(b, math.Float32bits(m.WindowParam))

	b = append(b, "data"...)
	b = le.AppendUint32(b, dataBytes)

	for _, v := range data {
		b = le.AppendUint32(b, math.Float32bits(v))
	}

	return b
}

// Write encodes f to w.
func Write(w io.Writer, f *frame.File) error {
	if _, err := w.Write(Encode(f)); err != nil {
		return fmt.Errorf("pvocex: %w", err)
	}

	return nil
}

// WriteFile encodes f into a new file at path.
func WriteFile(path string, f *frame.File) error {
	if err := os.WriteFile(path, Encode(f), 0o644); err != nil {
		return fmt.Errorf("pvocex: %w", err)
	}

	return nil
}
