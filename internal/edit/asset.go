package edit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Asset is one of the closed set of clip contents.
type Asset interface {
	// AssetType returns the wire discriminator.
	AssetType() string
	validate() []string
}

// Asset discriminators.
const (
	AssetVideo = "video"
	AssetImage = "image"
	AssetTitle = "title"
	AssetHTML  = "html"
	AssetAudio = "audio"
	AssetLuma  = "luma"
)

// Crop trims the edges of a visual asset, each side as a 0-1 fraction.
type Crop struct {
	Top    float64 `json:"top,omitempty"`
	Bottom float64 `json:"bottom,omitempty"`
	Left   float64 `json:"left,omitempty"`
	Right  float64 `json:"right,omitempty"`
}

// VideoAsset plays a video file.
type VideoAsset struct {
	Src          string      `json:"src"`
	Trim         float64     `json:"trim,omitempty"`
	Volume       *float64    `json:"volume,omitempty"`
	VolumeEffect AudioEffect `json:"volumeEffect,omitempty"`
	Crop         *Crop       `json:"crop,omitempty"`
}

// ImageAsset shows a still image.
type ImageAsset struct {
	Src  string `json:"src"`
	Crop *Crop  `json:"crop,omitempty"`
}

// TitleAsset renders styled text.
type TitleAsset struct {
	Text       string   `json:"text"`
	Style      string   `json:"style,omitempty"`
	Color      string   `json:"color,omitempty"`
	Size       string   `json:"size,omitempty"`
	Background string   `json:"background,omitempty"`
	Position   Position `json:"position,omitempty"`
}

// HTMLAsset renders an HTML fragment.
type HTMLAsset struct {
	HTML       string   `json:"html"`
	CSS        string   `json:"css,omitempty"`
	Width      int      `json:"width,omitempty"`
	Height     int      `json:"height,omitempty"`
	Background string   `json:"background,omitempty"`
	Position   Position `json:"position,omitempty"`
}

// AudioAsset plays an audio file.
type AudioAsset struct {
	Src    string      `json:"src"`
	Trim   float64     `json:"trim,omitempty"`
	Volume *float64    `json:"volume,omitempty"`
	Effect AudioEffect `json:"effect,omitempty"`
}

// LumaAsset is a greyscale matte used for custom transitions.
type LumaAsset struct {
	Src  string  `json:"src"`
	Trim float64 `json:"trim,omitempty"`
}

func (VideoAsset) AssetType() string { return AssetVideo }
func (ImageAsset) AssetType() string { return AssetImage }
func (TitleAsset) AssetType() string { return AssetTitle }
func (HTMLAsset) AssetType() string  { return AssetHTML }
func (AudioAsset) AssetType() string { return AssetAudio }
func (LumaAsset) AssetType() string  { return AssetLuma }

func (a VideoAsset) MarshalJSON() ([]byte, error) {
	type alias VideoAsset
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{AssetVideo, alias(a)})
}

func (a ImageAsset) MarshalJSON() ([]byte, error) {
	type alias ImageAsset
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{AssetImage, alias(a)})
}

func (a TitleAsset) MarshalJSON() ([]byte, error) {
	type alias TitleAsset
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{AssetTitle, alias(a)})
}

func (a HTMLAsset) MarshalJSON() ([]byte, error) {
	type alias HTMLAsset
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{AssetHTML, alias(a)})
}

func (a AudioAsset) MarshalJSON() ([]byte, error) {
	type alias AudioAsset
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{AssetAudio, alias(a)})
}

func (a LumaAsset) MarshalJSON() ([]byte, error) {
	type alias LumaAsset
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{AssetLuma, alias(a)})
}

// ErrUnknownAsset is returned when decoding an asset with an unrecognized type.
var ErrUnknownAsset = errors.New("unknown asset type")

// DecodeAsset decodes a single asset by its "type" discriminator.
func DecodeAsset(data []byte) (Asset, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode asset type: %w", err)
	}
	var (
		asset Asset
		err   error
	)
	switch head.Type {
	case AssetVideo:
		var v VideoAsset
		err = json.Unmarshal(data, &v)
		asset = v
	case AssetImage:
		var v ImageAsset
		err = json.Unmarshal(data, &v)
		asset = v
	case AssetTitle:
		var v TitleAsset
		err = json.Unmarshal(data, &v)
		asset = v
	case AssetHTML:
		var v HTMLAsset
		err = json.Unmarshal(data, &v)
		asset = v
	case AssetAudio:
		var v AudioAsset
		err = json.Unmarshal(data, &v)
		asset = v
	case AssetLuma:
		var v LumaAsset
		err = json.Unmarshal(data, &v)
		asset = v
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownAsset, head.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s asset: %w", head.Type, err)
	}
	return asset, nil
}

func requireSrc(src string) []string {
	if strings.TrimSpace(src) == "" {
		return []string{"src is required"}
	}
	return nil
}

func checkVolume(volume *float64) []string {
	if volume != nil && *volume < 0 {
		return []string{fmt.Sprintf("volume %.3f is negative", *volume)}
	}
	return nil
}

func (a VideoAsset) validate() []string {
	problems := requireSrc(a.Src)
	problems = append(problems, checkVolume(a.Volume)...)
	if !a.VolumeEffect.Valid() {
		problems = append(problems, fmt.Sprintf("unknown volume effect %q", a.VolumeEffect))
	}
	if a.Trim < 0 {
		problems = append(problems, "trim is negative")
	}
	return problems
}

func (a ImageAsset) validate() []string {
	return requireSrc(a.Src)
}

func (a TitleAsset) validate() []string {
	var problems []string
	if strings.TrimSpace(a.Text) == "" {
		problems = append(problems, "text is required")
	}
	if !a.Position.Valid() {
		problems = append(problems, fmt.Sprintf("unknown position %q", a.Position))
	}
	return problems
}

func (a HTMLAsset) validate() []string {
	var problems []string
	if strings.TrimSpace(a.HTML) == "" {
		problems = append(problems, "html is required")
	}
	if a.Width < 0 || a.Height < 0 {
		problems = append(problems, "width and height must not be negative")
	}
	if !a.Position.Valid() {
		problems = append(problems, fmt.Sprintf("unknown position %q", a.Position))
	}
	return problems
}

func (a AudioAsset) validate() []string {
	problems := requireSrc(a.Src)
	problems = append(problems, checkVolume(a.Volume)...)
	if !a.Effect.Valid() {
		problems = append(problems, fmt.Sprintf("unknown audio effect %q", a.Effect))
	}
	if a.Trim < 0 {
		problems = append(problems, "trim is negative")
	}
	return problems
}

func (a LumaAsset) validate() []string {
	return requireSrc(a.Src)
}

// Volume returns a pointer to v for the optional volume fields.
func Volume(v float64) *float64 {
	return &v
}
