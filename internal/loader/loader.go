// Package loader handles ROM file loading operations.
package loader

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/retrochip8/internal/machine"
)

// ROM is a loaded CHIP-8 program.
type ROM struct {
	Name     string
	Data     []byte
	Checksum uint32 // CRC32 (IEEE) of the data
}

// Loader handles loading ROM files from disk.
type Loader struct {
	maxSize int
}

// New creates a new ROM loader that accepts programs that fit into memory
// when loaded at the given address.
func New(loadAddress uint16) *Loader {
	return &Loader{
		maxSize: max(machine.MemorySize-int(loadAddress), 0),
	}
}

// Load reads a ROM file.
func (l *Loader) Load(path string) (*ROM, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	rom, err := l.Read(file)
	if err != nil {
		return nil, fmt.Errorf("loading ROM %s: %w", path, err)
	}
	rom.Name = filepath.Base(path)
	return rom, nil
}

// Read reads a ROM from a reader.
func (l *Loader) Read(reader io.Reader) (*ROM, error) {
	// read one byte more than allowed to detect oversized programs
	data, err := io.ReadAll(io.LimitReader(reader, int64(l.maxSize)+1))
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}

	switch {
	case len(data) == 0:
		return nil, machine.ErrEmptyProgram
	case len(data) > l.maxSize:
		return nil, fmt.Errorf("%w: maximum size is %d bytes", machine.ErrProgramTooLarge, l.maxSize)
	}

	crc32q := crc32.MakeTable(crc32.IEEE)
	return &ROM{
		Data:     data,
		Checksum: crc32.Checksum(data, crc32q),
	}, nil
}
