package path

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// SegmentType is the document discriminator selecting a segment implementation.
type SegmentType string

const (
	LinearSegmentType SegmentType = "linear"
	CircleSegmentType SegmentType = "circle"
)

// SegmentData is the serialisable form of a segment.
//
// Supported types:
//   - "linear": length.
//   - "circle": radius and a signed arc, given either in radians (arc) or in degrees
//     (arc_degrees).
type SegmentData struct {
	Type       SegmentType `json:"type" yaml:"type"`
	Length     float64     `json:"length,omitempty" yaml:"length,omitempty"`
	Radius     float64     `json:"radius,omitempty" yaml:"radius,omitempty"`
	Arc        float64     `json:"arc,omitempty" yaml:"arc,omitempty"` // radians
	ArcDegrees *float64    `json:"arc_degrees,omitempty" yaml:"arc_degrees,omitempty"`
}

// segmentDataFields has SegmentData's fields without its decoding methods.
type segmentDataFields SegmentData

// UnmarshalJSON implements json.Unmarshaler. The "type" discriminator must name a known
// segment type.
func (d *SegmentData) UnmarshalJSON(data []byte) error {
	var aux segmentDataFields
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if err := checkSegmentType(aux.Type); err != nil {
		return err
	}
	*d = SegmentData(aux)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler with the same rules as UnmarshalJSON.
func (d *SegmentData) UnmarshalYAML(value *yaml.Node) error {
	var aux segmentDataFields
	if err := value.Decode(&aux); err != nil {
		return err
	}
	if err := checkSegmentType(aux.Type); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = SegmentData(aux)
	return nil
}

func checkSegmentType(t SegmentType) error {
	switch t {
	case LinearSegmentType, CircleSegmentType:
		return nil
	case "":
		return fmt.Errorf("segment: missing \"type\" field")
	default:
		return fmt.Errorf("segment: unknown type %q", t)
	}
}

// Build constructs the segment described by d.
func (d SegmentData) Build() (Segment, error) {
	switch d.Type {
	case LinearSegmentType:
		return NewLinearSegment(d.Length)
	case CircleSegmentType:
		arc := d.Arc
		if d.ArcDegrees != nil {
			if d.Arc != 0 {
				return nil, fmt.Errorf("circle segment: both arc and arc_degrees set")
			}
			arc = *d.ArcDegrees * math.Pi / 180
		}
		return NewCircleSegment(d.Radius, arc)
	default:
		return nil, checkSegmentType(d.Type)
	}
}

// PathData is the serialisable form of a compound path.
type PathData struct {
	Segments []SegmentData `json:"segments" yaml:"segments"`
}

// Build constructs the compound path. Every segment is validated and all failures are
// reported together.
func (d PathData) Build() (*CompoundPath, error) {
	if len(d.Segments) == 0 {
		return nil, fmt.Errorf("%w: path has no segments", ErrDegeneratePath)
	}
	segments := make([]Segment, 0, len(d.Segments))
	var errs error
	for i, sd := range d.Segments {
		s, err := sd.Build()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("segment %d: %w", i, err))
			continue
		}
		segments = append(segments, s)
	}
	if errs != nil {
		return nil, errs
	}
	return NewCompoundPath(segments...)
}

// DataOf returns the document form of p. Segments that have no document form are
// reported as an error.
func DataOf(p *CompoundPath) (PathData, error) {
	d := PathData{Segments: make([]SegmentData, 0, p.Len())}
	for i, s := range p.Segments() {
		ds, ok := s.(interface{ Data() SegmentData })
		if !ok {
			return PathData{}, fmt.Errorf("segment %d: %T has no document form", i, s)
		}
		d.Segments = append(d.Segments, ds.Data())
	}
	return d, nil
}

// LoadJSON decodes a path document from JSON.
func LoadJSON(r io.Reader) (*PathData, error) {
	var d PathData
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decoding path JSON: %w", err)
	}
	return &d, nil
}

// LoadYAML decodes a path document from YAML.
func LoadYAML(r io.Reader) (*PathData, error) {
	var d PathData
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decoding path YAML: %w", err)
	}
	return &d, nil
}
