package ebtext

import "testing"

// headeredImage builds a HiROM image with a 0x200-byte copier header:
// the checksum-complement pair and the cartridge title both land where
// the header probe looks.
func headeredImage() []byte {
	data := make([]byte, 0x110000+0x200)
	copy(data[0xffc0+0x200:], romTitle)
	data[0x101dc] = 0x12
	data[0x101dd] = 0x34
	data[0x101de] = ^byte(0x12)
	data[0x101df] = ^byte(0x34)
	data[0x200] = 0xab
	return data
}

func TestNewImageStripsCopierHeader(t *testing.T) {
	data := headeredImage()
	im := NewImage(data)
	if im.Len() != len(data)-0x200 {
		t.Fatalf("Len = %#x, want %#x", im.Len(), len(data)-0x200)
	}
	if im.Data[0] != 0xab {
		t.Errorf("Data[0] = %#x, header not stripped", im.Data[0])
	}
}

func TestNewImageKeepsHeaderlessData(t *testing.T) {
	data := make([]byte, 0x110000)
	data[0] = 0xab
	im := NewImage(data)
	if im.Len() != len(data) {
		t.Fatalf("Len = %#x, want %#x", im.Len(), len(data))
	}
	if im.Data[0] != 0xab {
		t.Errorf("Data[0] = %#x", im.Data[0])
	}
}

func TestNewImageChecksumMismatch(t *testing.T) {
	data := headeredImage()
	data[0x101de] = 0x00 // break the complement pair
	im := NewImage(data)
	if im.Len() != len(data) {
		t.Error("stripped a header without a valid checksum pair")
	}
}

func TestNewImageTitleMismatch(t *testing.T) {
	data := headeredImage()
	data[0xffc0+0x200] = 'X'
	im := NewImage(data)
	if im.Len() != len(data) {
		t.Error("stripped a header without the cartridge title")
	}
}

func TestNewImageShortData(t *testing.T) {
	im := NewImage([]byte{0x01, 0x02})
	if im.Len() != 2 {
		t.Errorf("Len = %d, want 2", im.Len())
	}
}
