package edit

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Offset nudges a visual asset from its anchor position, as a fraction of the frame.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Clip places one asset on a track at [Start, Start+Length).
type Clip struct {
	Asset      Asset        `json:"asset"`
	Start      float64      `json:"start"`
	Length     float64      `json:"length"`
	Fit        Fit          `json:"fit,omitempty"`
	Scale      float64      `json:"scale,omitempty"`
	Position   Position     `json:"position,omitempty"`
	Offset     *Offset      `json:"offset,omitempty"`
	Transition *Transition  `json:"transition,omitempty"`
	Effect     MotionEffect `json:"effect,omitempty"`
	Filter     Filter       `json:"filter,omitempty"`
	Opacity    *float64     `json:"opacity,omitempty"`
}

// End returns the timeline position where the clip stops.
func (c Clip) End() float64 {
	return c.Start + c.Length
}

// UnmarshalJSON decodes the clip and resolves its asset variant.
func (c *Clip) UnmarshalJSON(data []byte) error {
	type clipAlias Clip
	aux := struct {
		*clipAlias
		Asset json.RawMessage `json:"asset"`
	}{clipAlias: (*clipAlias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Asset) == 0 || string(aux.Asset) == "null" {
		return errors.New("clip asset is required")
	}
	asset, err := DecodeAsset(aux.Asset)
	if err != nil {
		return err
	}
	c.Asset = asset
	return nil
}

func (c Clip) validate() []string {
	var problems []string
	if c.Asset == nil {
		problems = append(problems, "asset is required")
	} else {
		for _, p := range c.Asset.validate() {
			problems = append(problems, c.Asset.AssetType()+" asset: "+p)
		}
	}
	if c.Start < 0 {
		problems = append(problems, fmt.Sprintf("start %.3f is negative", c.Start))
	}
	if c.Length <= 0 {
		problems = append(problems, fmt.Sprintf("length %.3f must be positive", c.Length))
	}
	if !c.Fit.Valid() {
		problems = append(problems, fmt.Sprintf("unknown fit %q", c.Fit))
	}
	if !c.Position.Valid() {
		problems = append(problems, fmt.Sprintf("unknown position %q", c.Position))
	}
	if !c.Effect.Valid() {
		problems = append(problems, fmt.Sprintf("unknown effect %q", c.Effect))
	}
	if !c.Filter.Valid() {
		problems = append(problems, fmt.Sprintf("unknown filter %q", c.Filter))
	}
	if c.Opacity != nil && (*c.Opacity < 0 || *c.Opacity > 1) {
		problems = append(problems, fmt.Sprintf("opacity %.3f outside 0-1", *c.Opacity))
	}
	if t := c.Transition; t != nil {
		if t.In != "" && !t.In.Valid() {
			problems = append(problems, fmt.Sprintf("unknown transition in %q", t.In))
		}
		if t.Out != "" && !t.Out.Valid() {
			problems = append(problems, fmt.Sprintf("unknown transition out %q", t.Out))
		}
	}
	return problems
}
