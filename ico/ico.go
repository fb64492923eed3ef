// Package ico writes Windows icon containers holding PNG-compressed images.
package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"sort"
)

// Common errors
var (
	ErrNoEntries = errors.New("ico: no images")
	ErrTooLarge  = errors.New("ico: images larger than 256px are not allowed")
	ErrNotSquare = errors.New("ico: image is not square")
)

const (
	headerSize = 6
	entrySize  = 16
	maxSize    = 256
)

// Entry is one image in the container
type Entry struct {
	Size int
	PNG  []byte
}

// NewEntry encodes img as PNG for embedding
func NewEntry(img image.Image) (Entry, error) {
	b := img.Bounds()
	if b.Dx() != b.Dy() {
		return Entry{}, fmt.Errorf("%w: %dx%d", ErrNotSquare, b.Dx(), b.Dy())
	}
	if b.Dx() > maxSize {
		return Entry{}, fmt.Errorf("%w: %d", ErrTooLarge, b.Dx())
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Entry{}, fmt.Errorf("ico: encode %dpx: %w", b.Dx(), err)
	}
	return Entry{Size: b.Dx(), PNG: buf.Bytes()}, nil
}

// Encode writes entries, smallest first, as an ICO file
func Encode(w io.Writer, entries []Entry) error {
	if len(entries) == 0 {
		return ErrNoEntries
	}

	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Size < sorted[j].Size })

	var buf bytes.Buffer
	// Header: reserved, type (1=ICO), count
	binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, uint16(len(sorted))})

	offset := uint32(headerSize + entrySize*len(sorted))
	for _, e := range sorted {
		if e.Size <= 0 || e.Size > maxSize {
			return fmt.Errorf("%w: %d", ErrTooLarge, e.Size)
		}

		// 256 is stored as 0
		dim := uint8(e.Size)
		if e.Size == maxSize {
			dim = 0
		}
		buf.Write([]byte{dim, dim, 0, 0})                           // width, height, palette, reserved
		binary.Write(&buf, binary.LittleEndian, uint16(1))          // color planes
		binary.Write(&buf, binary.LittleEndian, uint16(32))         // bits per pixel
		binary.Write(&buf, binary.LittleEndian, uint32(len(e.PNG))) // data size
		binary.Write(&buf, binary.LittleEndian, offset)             // data offset
		offset += uint32(len(e.PNG))
	}

	for _, e := range sorted {
		buf.Write(e.PNG)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile encodes images into an ICO file at path
func WriteFile(path string, images []image.Image) error {
	entries := make([]Entry, 0, len(images))
	for _, img := range images {
		e, err := NewEntry(img)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, entries); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// DirEntry is a decoded directory record, used to inspect written files
type DirEntry struct {
	Width, Height int
	BitCount      int
	Size, Offset  uint32
}

// ReadDir parses the header and directory of an ICO file
func ReadDir(data []byte) ([]DirEntry, error) {
	if len(data) < headerSize {
		return nil, io.ErrUnexpectedEOF
	}
	var hdr [3]uint16
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr[0] != 0 || hdr[1] != 1 {
		return nil, errors.New("ico: not an icon file")
	}

	count := int(hdr[2])
	if len(data) < headerSize+count*entrySize {
		return nil, io.ErrUnexpectedEOF
	}

	dir := make([]DirEntry, count)
	for i := range dir {
		rec := data[headerSize+i*entrySize : headerSize+(i+1)*entrySize]
		w, h := int(rec[0]), int(rec[1])
		if w == 0 {
			w = maxSize
		}
		if h == 0 {
			h = maxSize
		}
		dir[i] = DirEntry{
			Width:    w,
			Height:   h,
			BitCount: int(binary.LittleEndian.Uint16(rec[6:8])),
			Size:     binary.LittleEndian.Uint32(rec[8:12]),
			Offset:   binary.LittleEndian.Uint32(rec[12:16]),
		}
		if int(dir[i].Offset)+int(dir[i].Size) > len(data) {
			return nil, io.ErrUnexpectedEOF
		}
	}
	return dir, nil
}
