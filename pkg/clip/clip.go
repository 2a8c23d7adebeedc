// Package clip implements the BPAK binary container for compiled
// skeletal animation: a bone-parent table plus per-animation blocks of
// fixed-point bone frames.
package clip

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// BPAK format errors.
var (
	ErrInvalidMagic       = errors.New("invalid clip magic: expected 'BPAK'")
	ErrUnsupportedVersion = errors.New("unsupported clip version")
	ErrTruncatedData      = errors.New("truncated clip data")
	ErrFrameCountMismatch = errors.New("frame data does not match frame and bone counts")
)

const clipMagic = "BPAK"

// NoParent is the parent-table sentinel for root bones.
const NoParent = 0xFFFF

// nameLength is the fixed on-disk size of an animation name.
const nameLength = 40

// Version is the container version.
type Version struct {
	Major uint8
	Minor uint8
}

// Current is the version this package writes.
var Current = Version{Major: 1, Minor: 0}

// String returns the version as "Major.Minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// BoneFrame is one bone's pose in one frame: 16-bit fixed-point
// position and the x, y, z of a hemisphere-canonicalized unit
// quaternion scaled to the signed 16-bit range.
type BoneFrame struct {
	Pos [3]int16
	Rot [3]int16
}

// Animation is one clip block.
type Animation struct {
	Name           string
	FrameCount     uint16
	BoneCount      uint16
	TicksPerSecond uint16
	MaxTicks       uint16
	// Frames is frame-major, bone-minor: frame 0 bone 0, frame 0
	// bone 1, ..., frame 1 bone 0.
	Frames []BoneFrame
}

// File is a parsed or to-be-written BPAK container.
type File struct {
	Version     Version
	BoneParents []uint16
	Animations  []Animation
}

// Encode serializes the container. Little-endian throughout.
func (f *File) Encode() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(clipMagic)
	buf.WriteByte(f.Version.Major)
	buf.WriteByte(f.Version.Minor)

	binary.Write(&buf, binary.LittleEndian, uint16(len(f.BoneParents)))
	binary.Write(&buf, binary.LittleEndian, uint16(len(f.Animations)))
	binary.Write(&buf, binary.LittleEndian, f.BoneParents)

	for i := range f.Animations {
		a := &f.Animations[i]
		if int(a.FrameCount)*int(a.BoneCount) != len(a.Frames) {
			return nil, fmt.Errorf("%w: animation %q has %d frames for %dx%d",
				ErrFrameCountMismatch, a.Name, len(a.Frames), a.FrameCount, a.BoneCount)
		}

		name := make([]byte, nameLength)
		copy(name, a.Name)
		buf.Write(name)

		binary.Write(&buf, binary.LittleEndian, a.FrameCount)
		binary.Write(&buf, binary.LittleEndian, a.BoneCount)
		binary.Write(&buf, binary.LittleEndian, a.TicksPerSecond)
		binary.Write(&buf, binary.LittleEndian, a.MaxTicks)
		binary.Write(&buf, binary.LittleEndian, a.Frames)
	}

	return buf.Bytes(), nil
}

// WriteFile encodes the container and writes it to disk.
func (f *File) WriteFile(path string) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Parse reads a BPAK container from a byte slice.
func Parse(data []byte) (*File, error) {
	if len(data) < 10 {
		return nil, ErrTruncatedData
	}

	r := bytes.NewReader(data)

	magic := make([]byte, 4)
	r.Read(magic)
	if string(magic) != clipMagic {
		return nil, ErrInvalidMagic
	}

	f := &File{}
	binary.Read(r, binary.LittleEndian, &f.Version.Major)
	binary.Read(r, binary.LittleEndian, &f.Version.Minor)
	if f.Version.Major != Current.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, f.Version)
	}

	var boneCount, animCount uint16
	binary.Read(r, binary.LittleEndian, &boneCount)
	binary.Read(r, binary.LittleEndian, &animCount)

	if r.Len() < int(boneCount)*2 {
		return nil, ErrTruncatedData
	}
	f.BoneParents = make([]uint16, boneCount)
	binary.Read(r, binary.LittleEndian, &f.BoneParents)

	f.Animations = make([]Animation, animCount)
	for i := range f.Animations {
		a := &f.Animations[i]

		if r.Len() < nameLength+8 {
			return nil, ErrTruncatedData
		}
		name := make([]byte, nameLength)
		r.Read(name)
		a.Name = trimName(name)

		binary.Read(r, binary.LittleEndian, &a.FrameCount)
		binary.Read(r, binary.LittleEndian, &a.BoneCount)
		binary.Read(r, binary.LittleEndian, &a.TicksPerSecond)
		binary.Read(r, binary.LittleEndian, &a.MaxTicks)

		total := int(a.FrameCount) * int(a.BoneCount)
		if r.Len() < total*12 {
			return nil, ErrTruncatedData
		}
		a.Frames = make([]BoneFrame, total)
		binary.Read(r, binary.LittleEndian, &a.Frames)
	}

	return f, nil
}

// ParseFile reads a BPAK container from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading clip file: %w", err)
	}
	return Parse(data)
}

// trimName cuts a fixed-length name field at its null terminator.
func trimName(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
