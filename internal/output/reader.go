package output

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Frame is one emitted snapshot of the particle population.
type Frame struct {
	Step                int
	X, Y, Z, EX, EY, EZ []float64
}

// Trajectory is a fully loaded output file.
type Trajectory struct {
	Particles int
	Frames    []Frame
}

// ReadFile loads a trajectory, picking the format from the file extension
// (.bin is binary, everything else is parsed as CSV).
func ReadFile(path string) (*Trajectory, error) {
	if filepath.Ext(path) == ".bin" {
		return ReadBinary(path)
	}
	return ReadCSV(path)
}

// ReadBinaryHeader reads just the file-level header.
func ReadBinaryHeader(path string) (particles, frames int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	var p, n int32
	if err := binary.Read(f, binary.LittleEndian, &p); err != nil {
		return 0, 0, fmt.Errorf("reading particle count: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return 0, 0, fmt.Errorf("reading frame count: %w", err)
	}
	return int(p), int(n), nil
}

func ReadBinary(path string) (*Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var particles, frames int32
	if err := binary.Read(r, binary.LittleEndian, &particles); err != nil {
		return nil, fmt.Errorf("reading particle count: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &frames); err != nil {
		return nil, fmt.Errorf("reading frame count: %w", err)
	}
	if particles <= 0 || frames < 0 {
		return nil, fmt.Errorf("corrupt header: particles=%d frames=%d", particles, frames)
	}

	t := &Trajectory{Particles: int(particles), Frames: make([]Frame, 0, frames)}
	for i := 0; i < int(frames); i++ {
		var step int32
		if err := binary.Read(r, binary.LittleEndian, &step); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("reading frame %d step: %w", i, err)
		}
		fr := Frame{Step: int(step)}
		for _, dst := range []*[]float64{&fr.X, &fr.Y, &fr.Z, &fr.EX, &fr.EY, &fr.EZ} {
			arr := make([]float64, particles)
			if err := binary.Read(r, binary.LittleEndian, arr); err != nil {
				return nil, fmt.Errorf("reading frame %d data: %w", i, err)
			}
			*dst = arr
		}
		t.Frames = append(t.Frames, fr)
	}
	return t, nil
}

func ReadCSV(path string) (*Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return &Trajectory{}, nil
	}

	t := &Trajectory{}
	var cur *Frame
	curStep := -1
	for _, rec := range records[1:] {
		if len(rec) != 8 {
			continue
		}
		vals := make([]float64, 6)
		ok := true
		for i := 0; i < 6; i++ {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		step, err := strconv.Atoi(rec[7])
		if !ok || err != nil {
			continue
		}

		if step != curStep {
			t.Frames = append(t.Frames, Frame{Step: step})
			cur = &t.Frames[len(t.Frames)-1]
			curStep = step
		}
		cur.X = append(cur.X, vals[0])
		cur.Y = append(cur.Y, vals[1])
		cur.Z = append(cur.Z, vals[2])
		cur.EX = append(cur.EX, vals[3])
		cur.EY = append(cur.EY, vals[4])
		cur.EZ = append(cur.EZ, vals[5])
	}
	if len(t.Frames) > 0 {
		t.Particles = len(t.Frames[0].X)
	}
	return t, nil
}
