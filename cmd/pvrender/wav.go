package main

import (
	"encoding/binary"
	"io"
	"math"
)

const wavHeaderSize = 44

// writeWAV writes mono IEEE float32 samples as a RIFF/WAVE stream.
func writeWAV(w io.Writer, samples []float32, sampleRate int) error {
	dataSize := uint32(len(samples) * 4)

	buf := make([]byte, wavHeaderSize+int(dataSize))
	writeWavHeader(buf, dataSize, sampleRate, 1)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[wavHeaderSize+i*4:], math.Float32bits(s))
	}

	_, err := w.Write(buf)
	return err
}

func writeWavHeader(dst []byte, dataSize uint32, sampleRate, channels int) {
	copy(dst[0:4], "RIFF")
	binary.LittleEndian.PutUint32(dst[4:8], 36+dataSize)
	copy(dst[8:12], "WAVE")
	copy(dst[12:16], "fmt ")
	binary.LittleEndian.PutUint32(dst[16:20], 16)
	binary.LittleEndian.PutUint16(dst[20:22], 3) // IEEE float
	binary.LittleEndian.PutUint16(dst[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(dst[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(dst[28:32], uint32(sampleRate*channels*4))
	binary.LittleEndian.PutUint16(dst[32:34], uint16(channels*4))
	binary.LittleEndian.PutUint16(dst[34:36], 32)
	copy(dst[36:40], "data")
	binary.LittleEndian.PutUint32(dst[40:44], dataSize)
}
