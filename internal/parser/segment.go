package parser

import (
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
)

// RowKind is the segmenter's verdict on a row.
type RowKind int

const (
	RowContent RowKind = iota
	RowDrop
	RowStopPage
	RowStopDocument
	RowMarker
)

func (k RowKind) String() string {
	switch k {
	case RowContent:
		return "content"
	case RowDrop:
		return "drop"
	case RowStopPage:
		return "stop-page"
	case RowStopDocument:
		return "stop-document"
	case RowMarker:
		return "marker"
	}
	return "unknown"
}

// Segment is the classification of one row.
type Segment struct {
	Kind RowKind
	// Section is the target key of a marker row; empty parks the assembler.
	Section string
	// Rule names the sentinel that matched, if any.
	Rule string
}

// Segmenter classifies rows by the profile's sentinels and section markers.
// Sentinels are checked before markers.
type Segmenter struct {
	p *profile.Profile
}

func NewSegmenter(p *profile.Profile) *Segmenter {
	return &Segmenter{p: p}
}

// Classify takes folded row text.
func (s *Segmenter) Classify(folded string) Segment {
	for _, st := range s.p.Sentinels {
		if !st.Pattern.MatchString(folded) {
			continue
		}
		switch st.Action {
		case profile.StopPage:
			return Segment{Kind: RowStopPage, Rule: st.Name}
		case profile.StopDocument:
			return Segment{Kind: RowStopDocument, Rule: st.Name}
		default:
			return Segment{Kind: RowDrop, Rule: st.Name}
		}
	}
	if key, ok := s.Marker(folded); ok {
		return Segment{Kind: RowMarker, Section: key}
	}
	return Segment{Kind: RowContent}
}

// Marker reports the section started by a row, if it is a section marker.
func (s *Segmenter) Marker(folded string) (string, bool) {
	for _, sec := range s.p.Sections {
		if sec.Marker != nil && sec.Marker.MatchString(folded) {
			return sec.Key, true
		}
	}
	return "", false
}
