package timeline

// EffectiveGain returns the gain a category plays at on the timeline.
func EffectiveGain(category, master float64) float64 {
	return category * master
}

// SFXGainFor returns the sound-effect category value that, multiplied by
// master, yields desired. It reports false when master is not positive, since
// no category value can then produce an audible clip.
func SFXGainFor(desired, master float64) (float64, bool) {
	if master <= 0 {
		return 0, false
	}
	return desired / master, true
}
