// Package tiffstack reads multi-page TIFF files as random-access frame stacks.
//
// Pages are located by walking the IFD chain once at open time. Each read
// decodes a single page by presenting golang.org/x/image/tiff with a view of
// the file whose header points at that page's IFD.
package tiffstack

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/user/reelsync/pkg/frame"
	"github.com/user/reelsync/pkg/ports"
)

var (
	// ErrNotTIFF is returned when the file header is not a TIFF header.
	ErrNotTIFF = errors.New("tiffstack: not a TIFF file")
	// ErrNoPages is returned when the IFD chain is empty.
	ErrNoPages = errors.New("tiffstack: no pages")
	// ErrPageRange is returned for reads outside the page list.
	ErrPageRange = errors.New("tiffstack: page out of range")
)

const (
	headerSize = 8
	ifdEntry   = 12
	// maxPages bounds the IFD walk against cyclic or corrupt chains.
	maxPages = 1 << 16
)

// Supported reports whether path has a TIFF extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return true
	}
	return false
}

// Stack is a ports.DecodeSource over a multi-page TIFF.
type Stack struct {
	file  *os.File
	src   io.ReaderAt
	size  int64
	order binary.ByteOrder
	pages []uint32
	info  ports.MediaInfo
}

// New creates an unopened Stack.
func New() *Stack {
	return &Stack{}
}

// Open walks the page chain and reads the first page's geometry.
func (s *Stack) Open(path string) (ports.MediaInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("open file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return ports.MediaInfo{}, fmt.Errorf("stat file: %w", err)
	}

	info, err := s.openReader(path, f, st.Size())
	if err != nil {
		f.Close()
		return ports.MediaInfo{}, err
	}
	s.Close()
	s.file = f
	return info, nil
}

// openReader indexes pages from any ReaderAt.
func (s *Stack) openReader(path string, r io.ReaderAt, size int64) (ports.MediaInfo, error) {
	order, pages, err := walkPages(r, size)
	if err != nil {
		return ports.MediaInfo{}, err
	}

	s.src = r
	s.size = size
	s.order = order
	s.pages = pages

	cfg, err := tiff.DecodeConfig(s.pageReader(0))
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("decode first page: %w", err)
	}

	s.info = ports.MediaInfo{
		Path:       path,
		Kind:       ports.KindFrameStack,
		FrameCount: len(pages),
		Width:      cfg.Width,
		Height:     cfg.Height,
		Codec:      "tiff",
	}
	return s.info, nil
}

// Pages returns the number of indexed pages.
func (s *Stack) Pages() int {
	return len(s.pages)
}

// Read decodes page index.
func (s *Stack) Read(index int) (*frame.RGB, error) {
	if index < 0 || index >= len(s.pages) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageRange, index, len(s.pages))
	}
	img, err := tiff.Decode(s.pageReader(index))
	if err != nil {
		return nil, fmt.Errorf("decode page %d: %w", index, err)
	}
	return frame.FromImage(img)
}

// Close releases the underlying file.
func (s *Stack) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *Stack) pageReader(index int) *io.SectionReader {
	var ptr [4]byte
	s.order.PutUint32(ptr[:], s.pages[index])
	return io.NewSectionReader(&patchedHeader{src: s.src, ptr: ptr}, 0, s.size)
}

// walkPages validates the header and collects IFD offsets.
func walkPages(r io.ReaderAt, size int64) (binary.ByteOrder, []uint32, error) {
	var hdr [headerSize]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return nil, nil, ErrNotTIFF
	}

	var order binary.ByteOrder
	switch string(hdr[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, nil, ErrNotTIFF
	}
	if order.Uint16(hdr[2:4]) != 42 {
		return nil, nil, ErrNotTIFF
	}

	var pages []uint32
	seen := make(map[uint32]bool)
	offset := order.Uint32(hdr[4:8])
	for offset != 0 && len(pages) < maxPages {
		if seen[offset] || int64(offset)+2 > size {
			break
		}
		seen[offset] = true

		var cnt [2]byte
		if _, err := r.ReadAt(cnt[:], int64(offset)); err != nil {
			break
		}
		n := int64(order.Uint16(cnt[:]))
		nextAt := int64(offset) + 2 + n*ifdEntry
		if nextAt+4 > size {
			break
		}
		pages = append(pages, offset)

		var next [4]byte
		if _, err := r.ReadAt(next[:], nextAt); err != nil {
			break
		}
		offset = order.Uint32(next[:])
	}

	if len(pages) == 0 {
		return nil, nil, ErrNoPages
	}
	return order, pages, nil
}

// patchedHeader serves the file with bytes 4..7 replaced by ptr.
type patchedHeader struct {
	src io.ReaderAt
	ptr [4]byte
}

func (p *patchedHeader) ReadAt(b []byte, off int64) (int, error) {
	n, err := p.src.ReadAt(b, off)
	for i := 0; i < n; i++ {
		pos := off + int64(i)
		if pos >= 4 && pos < headerSize {
			b[i] = p.ptr[pos-4]
		}
	}
	return n, err
}

var _ ports.DecodeSource = (*Stack)(nil)
