// Package output writes and reads trajectory frames in the two supported
// formats: CSV rows and a compact binary layout.
package output

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/particlekit/abp3d/internal/particle"
)

// FrameWriter receives one frame per output interval.
type FrameWriter interface {
	WriteFrame(s *particle.State, step int) error
	Close() error
}

// CSVWriter emits one row per particle per frame:
// id,x,y,z,ex,ey,ez,step.
type CSVWriter struct {
	f *os.File
	w *csv.Writer
}

func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "x", "y", "z", "ex", "ey", "ez", "step"}); err != nil {
		f.Close()
		return nil, err
	}
	return &CSVWriter{f: f, w: w}, nil
}

func (c *CSVWriter) WriteFrame(s *particle.State, step int) error {
	row := make([]string, 8)
	row[7] = strconv.Itoa(step)
	for k := 0; k < s.N; k++ {
		row[0] = strconv.Itoa(k)
		row[1] = strconv.FormatFloat(s.X[k], 'f', 6, 64)
		row[2] = strconv.FormatFloat(s.Y[k], 'f', 6, 64)
		row[3] = strconv.FormatFloat(s.Z[k], 'f', 6, 64)
		row[4] = strconv.FormatFloat(s.EX[k], 'f', 6, 64)
		row[5] = strconv.FormatFloat(s.EY[k], 'f', 6, 64)
		row[6] = strconv.FormatFloat(s.EZ[k], 'f', 6, 64)
		if err := c.w.Write(row); err != nil {
			return err
		}
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}

// BinaryWriter emits a file-level header (particle count and frame count as
// int32), then per frame the step as int32 followed by six contiguous
// float64 arrays in order x, y, z, ex, ey, ez. Little-endian throughout.
type BinaryWriter struct {
	f  *os.File
	bw *bufio.Writer
}

func NewBinaryWriter(path string, particles, frames int) (*BinaryWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(f)
	if err := binary.Write(bw, binary.LittleEndian, int32(particles)); err != nil {
		f.Close()
		return nil, err
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(frames)); err != nil {
		f.Close()
		return nil, err
	}
	return &BinaryWriter{f: f, bw: bw}, nil
}

func (b *BinaryWriter) WriteFrame(s *particle.State, step int) error {
	if err := binary.Write(b.bw, binary.LittleEndian, int32(step)); err != nil {
		return err
	}
	for _, arr := range [][]float64{s.X, s.Y, s.Z, s.EX, s.EY, s.EZ} {
		if err := binary.Write(b.bw, binary.LittleEndian, arr); err != nil {
			return err
		}
	}
	return nil
}

func (b *BinaryWriter) Close() error {
	if err := b.bw.Flush(); err != nil {
		b.f.Close()
		return err
	}
	return b.f.Close()
}

// NewWriter opens a writer for the given format ("csv" or "binary").
func NewWriter(format, path string, particles, frames int) (FrameWriter, error) {
	switch format {
	case "csv":
		return NewCSVWriter(path)
	case "binary":
		return NewBinaryWriter(path, particles, frames)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
