package edit

import "strings"

// TransitionEffect names an in/out transition understood by the engine.
type TransitionEffect string

const (
	TransitionFade               TransitionEffect = "fade"
	TransitionReveal             TransitionEffect = "reveal"
	TransitionWipeLeft           TransitionEffect = "wipeLeft"
	TransitionWipeRight          TransitionEffect = "wipeRight"
	TransitionSlideLeft          TransitionEffect = "slideLeft"
	TransitionSlideRight         TransitionEffect = "slideRight"
	TransitionSlideUp            TransitionEffect = "slideUp"
	TransitionSlideDown          TransitionEffect = "slideDown"
	TransitionCarouselLeft       TransitionEffect = "carouselLeft"
	TransitionCarouselRight      TransitionEffect = "carouselRight"
	TransitionCarouselUp         TransitionEffect = "carouselUp"
	TransitionCarouselDown       TransitionEffect = "carouselDown"
	TransitionShuffleTopRight    TransitionEffect = "shuffleTopRight"
	TransitionShuffleRightTop    TransitionEffect = "shuffleRightTop"
	TransitionShuffleRightBottom TransitionEffect = "shuffleRightBottom"
	TransitionShuffleBottomRight TransitionEffect = "shuffleBottomRight"
	TransitionShuffleBottomLeft  TransitionEffect = "shuffleBottomLeft"
	TransitionShuffleLeftBottom  TransitionEffect = "shuffleLeftBottom"
	TransitionShuffleLeftTop     TransitionEffect = "shuffleLeftTop"
	TransitionShuffleTopLeft     TransitionEffect = "shuffleTopLeft"
	TransitionZoom               TransitionEffect = "zoom"
)

var baseTransitions = []TransitionEffect{
	TransitionFade,
	TransitionReveal,
	TransitionWipeLeft,
	TransitionWipeRight,
	TransitionSlideLeft,
	TransitionSlideRight,
	TransitionSlideUp,
	TransitionSlideDown,
	TransitionCarouselLeft,
	TransitionCarouselRight,
	TransitionCarouselUp,
	TransitionCarouselDown,
	TransitionShuffleTopRight,
	TransitionShuffleRightTop,
	TransitionShuffleRightBottom,
	TransitionShuffleBottomRight,
	TransitionShuffleBottomLeft,
	TransitionShuffleLeftBottom,
	TransitionShuffleLeftTop,
	TransitionShuffleTopLeft,
	TransitionZoom,
}

// Speed suffixes accepted on transitions and motion effects.
const (
	speedSlow = "Slow"
	speedFast = "Fast"
)

func stripSpeed(name string) string {
	if base, ok := strings.CutSuffix(name, speedSlow); ok {
		return base
	}
	if base, ok := strings.CutSuffix(name, speedFast); ok {
		return base
	}
	return name
}

// Valid reports whether the effect is a known transition, optionally with a speed suffix.
func (t TransitionEffect) Valid() bool {
	base := TransitionEffect(stripSpeed(string(t)))
	for _, known := range baseTransitions {
		if base == known {
			return true
		}
	}
	return false
}

// Slow returns the slow variant of a base transition.
func (t TransitionEffect) Slow() TransitionEffect {
	return TransitionEffect(stripSpeed(string(t)) + speedSlow)
}

// Fast returns the fast variant of a base transition.
func (t TransitionEffect) Fast() TransitionEffect {
	return TransitionEffect(stripSpeed(string(t)) + speedFast)
}

// MotionEffect is a clip-level motion applied for the clip's whole length.
type MotionEffect string

const (
	EffectNone       MotionEffect = ""
	EffectZoomIn     MotionEffect = "zoomIn"
	EffectZoomOut    MotionEffect = "zoomOut"
	EffectSlideLeft  MotionEffect = "slideLeft"
	EffectSlideRight MotionEffect = "slideRight"
	EffectSlideUp    MotionEffect = "slideUp"
	EffectSlideDown  MotionEffect = "slideDown"
)

// Valid reports whether the effect is empty or a known motion, optionally with a speed suffix.
func (e MotionEffect) Valid() bool {
	switch MotionEffect(stripSpeed(string(e))) {
	case EffectNone, EffectZoomIn, EffectZoomOut, EffectSlideLeft, EffectSlideRight, EffectSlideUp, EffectSlideDown:
		return true
	default:
		return false
	}
}

// Filter is a colour filter applied to a visual clip.
type Filter string

const (
	FilterNone      Filter = ""
	FilterBlur      Filter = "blur"
	FilterBoost     Filter = "boost"
	FilterContrast  Filter = "contrast"
	FilterDarken    Filter = "darken"
	FilterGreyscale Filter = "greyscale"
	FilterLighten   Filter = "lighten"
	FilterMuted     Filter = "muted"
	FilterNegative  Filter = "negative"
)

// Valid reports whether the filter is empty or known.
func (f Filter) Valid() bool {
	switch f {
	case FilterNone, FilterBlur, FilterBoost, FilterContrast, FilterDarken,
		FilterGreyscale, FilterLighten, FilterMuted, FilterNegative:
		return true
	default:
		return false
	}
}

// Fit controls how a visual asset is scaled into the output frame.
type Fit string

const (
	FitDefault Fit = ""
	FitCover   Fit = "cover"
	FitContain Fit = "contain"
	FitCrop    Fit = "crop"
	FitNone    Fit = "none"
)

// Valid reports whether the fit is empty or known.
func (f Fit) Valid() bool {
	switch f {
	case FitDefault, FitCover, FitContain, FitCrop, FitNone:
		return true
	default:
		return false
	}
}

// AudioEffect fades an audio asset or soundtrack.
type AudioEffect string

const (
	AudioEffectNone          AudioEffect = ""
	AudioEffectFadeIn        AudioEffect = "fadeIn"
	AudioEffectFadeOut       AudioEffect = "fadeOut"
	AudioEffectFadeInFadeOut AudioEffect = "fadeInFadeOut"
)

// Valid reports whether the audio effect is empty or known.
func (e AudioEffect) Valid() bool {
	switch e {
	case AudioEffectNone, AudioEffectFadeIn, AudioEffectFadeOut, AudioEffectFadeInFadeOut:
		return true
	default:
		return false
	}
}

// FadeEffect maps fade flags onto a single audio effect. Both flags produce
// the combined effect; neither produces none.
func FadeEffect(fadeIn, fadeOut bool) AudioEffect {
	switch {
	case fadeIn && fadeOut:
		return AudioEffectFadeInFadeOut
	case fadeIn:
		return AudioEffectFadeIn
	case fadeOut:
		return AudioEffectFadeOut
	default:
		return AudioEffectNone
	}
}

// Position anchors a visual asset within the frame.
type Position string

const (
	PositionDefault     Position = ""
	PositionTop         Position = "top"
	PositionTopRight    Position = "topRight"
	PositionRight       Position = "right"
	PositionBottomRight Position = "bottomRight"
	PositionBottom      Position = "bottom"
	PositionBottomLeft  Position = "bottomLeft"
	PositionLeft        Position = "left"
	PositionTopLeft     Position = "topLeft"
	PositionCenter      Position = "center"
)

// Valid reports whether the position is empty or known.
func (p Position) Valid() bool {
	switch p {
	case PositionDefault, PositionTop, PositionTopRight, PositionRight, PositionBottomRight,
		PositionBottom, PositionBottomLeft, PositionLeft, PositionTopLeft, PositionCenter:
		return true
	default:
		return false
	}
}

// Format is the rendered output container.
type Format string

const (
	FormatMP4 Format = "mp4"
	FormatGIF Format = "gif"
	FormatMP3 Format = "mp3"
	FormatJPG Format = "jpg"
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
)

// Valid reports whether the format is known.
func (f Format) Valid() bool {
	switch f {
	case FormatMP4, FormatGIF, FormatMP3, FormatJPG, FormatPNG, FormatBMP:
		return true
	default:
		return false
	}
}

// Resolution is a named output size preset.
type Resolution string

const (
	ResolutionPreview Resolution = "preview"
	ResolutionMobile  Resolution = "mobile"
	ResolutionSD      Resolution = "sd"
	ResolutionHD      Resolution = "hd"
	Resolution1080    Resolution = "1080"
	Resolution4K      Resolution = "4k"
)

// Valid reports whether the resolution is empty or known.
func (r Resolution) Valid() bool {
	switch r {
	case "", ResolutionPreview, ResolutionMobile, ResolutionSD, ResolutionHD, Resolution1080, Resolution4K:
		return true
	default:
		return false
	}
}

// AspectRatio is the output frame shape.
type AspectRatio string

const (
	Aspect16x9 AspectRatio = "16:9"
	Aspect9x16 AspectRatio = "9:16"
	Aspect1x1  AspectRatio = "1:1"
	Aspect4x5  AspectRatio = "4:5"
	Aspect4x3  AspectRatio = "4:3"
)

// Valid reports whether the aspect ratio is empty or known.
func (a AspectRatio) Valid() bool {
	switch a {
	case "", Aspect16x9, Aspect9x16, Aspect1x1, Aspect4x5, Aspect4x3:
		return true
	default:
		return false
	}
}

var supportedFPS = []float64{12, 15, 23.976, 24, 25, 29.97, 30, 48, 50, 59.94, 60}

// ValidFPS reports whether fps is zero (engine default) or a supported frame rate.
func ValidFPS(fps float64) bool {
	if fps == 0 {
		return true
	}
	for _, candidate := range supportedFPS {
		if fps == candidate {
			return true
		}
	}
	return false
}
