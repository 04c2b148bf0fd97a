package ebtext

import (
	"bytes"
	"fmt"
	"os"
)

// romTitle is the cartridge title checked when probing for a copier
// header.
var romTitle = []byte("EARTH BOUND")

// Image is the flattened memory image all decoding runs against. The
// optional 0x200-byte copier header is stripped on construction.
type Image struct {
	Data []byte
}

// NewImage wraps raw file bytes, stripping a copier header if the
// checksum-complement pair and the cartridge title confirm one, in
// either the HiROM or LoROM layout.
func NewImage(data []byte) *Image {
	if hasCopierHeader(data, 0x101dc) {
		data = data[0x200:]
	} else if hasCopierHeader(data, 0x81dc) {
		data = data[0x200:]
	}
	return &Image{Data: data}
}

func hasCopierHeader(data []byte, checksumOff int) bool {
	titleOff := 0xffc0 + 0x200
	if len(data) < checksumOff+4 || len(data) < titleOff+len(romTitle) {
		return false
	}
	if ^data[checksumOff]&0xff != data[checksumOff+2] ||
		^data[checksumOff+1]&0xff != data[checksumOff+3] {
		return false
	}
	return bytes.Equal(data[titleOff:titleOff+len(romTitle)], romTitle)
}

// LoadImage reads a ROM file into memory.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}
	return NewImage(data), nil
}

func (im *Image) Len() int {
	return len(im.Data)
}
