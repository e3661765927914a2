package path

import (
	"fmt"
	"slices"
	"sort"
)

// entry is a segment placed inside a CompoundPath.
type entry struct {
	segment Segment
	start   Pose    // absolute pose where the segment begins
	relFrom float64 // fraction of total length where the segment begins
	relLen  float64 // fraction of total length covered by the segment
}

// CompoundPath chains segments end to end into one path. Each segment starts at the
// exit pose of the one before it. Segments can only be appended.
//
// A CompoundPath is not safe for concurrent use: finish building it before sharing it
// between goroutines, after which concurrent At calls are fine.
type CompoundPath struct {
	entries []entry
	length  float64
}

// NewCompoundPath returns a path made of the given segments, in order.
func NewCompoundPath(segments ...Segment) (*CompoundPath, error) {
	p := &CompoundPath{}
	for i, s := range segments {
		if err := p.Push(s); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return p, nil
}

// Push appends a segment and recomputes the placement of every segment.
func (p *CompoundPath) Push(s Segment) error {
	if s == nil {
		return fmt.Errorf("%w: nil segment", ErrDegeneratePath)
	}
	if l := s.Length(); !finite(l) || l <= 0 {
		return fmt.Errorf("%w: segment length %v", ErrDegeneratePath, l)
	}
	exit, err := s.At(1)
	if err != nil {
		return fmt.Errorf("segment exit pose: %w", err)
	}
	if !finite(exit.Position.X) || !finite(exit.Position.Y) || !finite(exit.Heading.Radians()) {
		return fmt.Errorf("%w: segment exit pose %v", ErrDegeneratePath, exit)
	}
	entries := append(slices.Clone(p.entries), entry{segment: s})
	total, err := layout(entries)
	if err != nil {
		return err
	}
	p.entries, p.length = entries, total
	return nil
}

// layout replays the whole sequence from the origin, placing each segment at the exit
// pose of its predecessor and assigning its share of the total length.
func layout(entries []entry) (float64, error) {
	total := 0.0
	for _, e := range entries {
		total += e.segment.Length()
	}
	if !finite(total) || total <= 0 {
		return 0, fmt.Errorf("%w: total length %v", ErrDegeneratePath, total)
	}

	var cursor Pose
	travelled := 0.0
	for i := range entries {
		e := &entries[i]
		l := e.segment.Length()
		e.start = cursor
		e.relFrom = travelled / total
		e.relLen = l / total

		exit, err := e.segment.At(1)
		if err != nil {
			return 0, err
		}
		cursor = cursor.Then(exit)
		travelled += l
	}
	return total, nil
}

// Length returns the sum of all segment lengths.
func (p *CompoundPath) Length() float64 { return p.length }

// Len returns the number of segments.
func (p *CompoundPath) Len() int { return len(p.entries) }

// Segment returns the i-th segment. It panics if i is out of range.
func (p *CompoundPath) Segment(i int) Segment { return p.entries[i].segment }

// Segments returns the segments in order.
func (p *CompoundPath) Segments() []Segment {
	out := make([]Segment, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.segment
	}
	return out
}

// Span returns the fraction of the total length at which the i-th segment begins and
// the fraction it covers. It panics if i is out of range.
func (p *CompoundPath) Span(i int) (start, length float64) {
	return p.entries[i].relFrom, p.entries[i].relLen
}

// StartOf returns the absolute pose where the i-th segment begins. It panics if i is
// out of range.
func (p *CompoundPath) StartOf(i int) Pose { return p.entries[i].start }

// At returns the absolute pose at fractional arc length position in [0, 1].
func (p *CompoundPath) At(position float64) (Pose, error) {
	e, local, err := p.locate(position)
	if err != nil {
		return Pose{}, err
	}
	pose, err := e.segment.At(local)
	if err != nil {
		return Pose{}, err
	}
	return e.start.Then(pose), nil
}

// CurvatureAt returns the signed curvature at position. Segments that do not implement
// Curved are treated as straight.
func (p *CompoundPath) CurvatureAt(position float64) (float64, error) {
	e, local, err := p.locate(position)
	if err != nil {
		return 0, err
	}
	c, ok := e.segment.(Curved)
	if !ok {
		return 0, nil
	}
	return c.CurvatureAt(local)
}

// locate finds the segment owning position and maps position into that segment's
// local [0, 1] range.
func (p *CompoundPath) locate(position float64) (*entry, float64, error) {
	if len(p.entries) == 0 {
		return nil, 0, fmt.Errorf("%w: empty path", ErrOutOfRange)
	}
	if p.length <= 0 {
		return nil, 0, ErrDegeneratePath
	}
	if err := checkPosition(position); err != nil {
		return nil, 0, err
	}

	n := len(p.entries)
	i := n - 1
	if position < 1 {
		// First segment starting past position, minus one, clamped to the valid range.
		i = sort.Search(n, func(k int) bool { return p.entries[k].relFrom > position }) - 1
		i = max(0, min(i, n-1))
	}

	e := &p.entries[i]
	local := (position - e.relFrom) / e.relLen
	return e, min(1, max(0, local)), nil
}
