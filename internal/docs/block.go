package docs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Block tags as they appear in the "type" field of a content block.
const (
	TagHeader  = "header"
	TagText    = "text"
	TagNote    = "note"
	TagTip     = "tip"
	TagCode    = "code"
	TagImage   = "image"
	TagRoadmap = "roadmap"
)

// Block is one renderable unit of section content. The set of implementations
// is closed; consumers dispatch through Accept.
type Block interface {
	Tag() string
	Accept(v BlockVisitor)
}

// BlockVisitor has one method per block type. Adding a block type adds a
// method here, which every visitor must then implement.
type BlockVisitor interface {
	VisitHeader(b *HeaderBlock)
	VisitText(b *TextBlock)
	VisitNote(b *NoteBlock)
	VisitTip(b *TipBlock)
	VisitCode(b *CodeBlock)
	VisitImage(b *ImageBlock)
	VisitRoadmap(b *RoadmapBlock)
	VisitUnknown(b *UnknownBlock)
}

// Lines is a block payload that may be written in JSON either as a single
// string or as an array of strings.
type Lines []string

func (l *Lines) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = Lines{s}
		return nil
	}
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("value must be a string or an array of strings: %w", err)
	}
	*l = Lines(parts)
	return nil
}

// Join concatenates the parts with sep.
func (l Lines) Join(sep string) string {
	return strings.Join(l, sep)
}

type HeaderBlock struct {
	Value Lines `json:"value"`
}

type TextBlock struct {
	Value Lines `json:"value"`
}

type NoteBlock struct {
	Value Lines `json:"value"`
}

type TipBlock struct {
	Value Lines `json:"value"`
}

// CodeBlock holds literal source lines. Its payload is never treated as markup.
type CodeBlock struct {
	Value Lines `json:"value"`
}

type ImageBlock struct {
	Src     string `json:"src"`
	Caption string `json:"caption,omitempty"`
	Align   string `json:"align,omitempty"`
}

type Milestone struct {
	Version  string   `json:"version"`
	Date     string   `json:"date"`
	Status   string   `json:"status"`
	Features []string `json:"features"`
}

type RoadmapBlock struct {
	Milestones []Milestone `json:"milestones"`
}

// UnknownBlock preserves a block whose tag this version does not understand.
// Value is set when the block carried a string or string-array "value".
type UnknownBlock struct {
	Type  string
	Value Lines
}

func (*HeaderBlock) Tag() string    { return TagHeader }
func (*TextBlock) Tag() string      { return TagText }
func (*NoteBlock) Tag() string      { return TagNote }
func (*TipBlock) Tag() string       { return TagTip }
func (*CodeBlock) Tag() string      { return TagCode }
func (*ImageBlock) Tag() string     { return TagImage }
func (*RoadmapBlock) Tag() string   { return TagRoadmap }
func (b *UnknownBlock) Tag() string { return b.Type }

func (b *HeaderBlock) Accept(v BlockVisitor)  { v.VisitHeader(b) }
func (b *TextBlock) Accept(v BlockVisitor)    { v.VisitText(b) }
func (b *NoteBlock) Accept(v BlockVisitor)    { v.VisitNote(b) }
func (b *TipBlock) Accept(v BlockVisitor)     { v.VisitTip(b) }
func (b *CodeBlock) Accept(v BlockVisitor)    { v.VisitCode(b) }
func (b *ImageBlock) Accept(v BlockVisitor)   { v.VisitImage(b) }
func (b *RoadmapBlock) Accept(v BlockVisitor) { v.VisitRoadmap(b) }
func (b *UnknownBlock) Accept(v BlockVisitor) { v.VisitUnknown(b) }

// Content is an ordered list of blocks with tag-driven JSON decoding.
type Content []Block

func (c *Content) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("content must be an array: %w", err)
	}
	blocks := make(Content, 0, len(raws))
	for i, raw := range raws {
		b, err := decodeBlock(raw)
		if err != nil {
			return fmt.Errorf("content[%d]: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	*c = blocks
	return nil
}

func decodeBlock(raw json.RawMessage) (Block, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decoding block: %w", err)
	}

	var b Block
	switch head.Type {
	case TagHeader:
		b = &HeaderBlock{}
	case TagText:
		b = &TextBlock{}
	case TagNote:
		b = &NoteBlock{}
	case TagTip:
		b = &TipBlock{}
	case TagCode:
		b = &CodeBlock{}
	case TagImage:
		b = &ImageBlock{}
	case TagRoadmap:
		b = &RoadmapBlock{}
	default:
		u := &UnknownBlock{Type: head.Type}
		var payload struct {
			Value Lines `json:"value"`
		}
		// Unknown blocks with a non-string value are kept without one.
		if json.Unmarshal(raw, &payload) == nil {
			u.Value = payload.Value
		}
		return u, nil
	}

	if err := json.Unmarshal(raw, b); err != nil {
		return nil, fmt.Errorf("decoding %s block: %w", head.Type, err)
	}
	return b, nil
}
