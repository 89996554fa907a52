// Package edit models the edit document accepted by the cloud rendering
// engine: a timeline of tracks holding time-positioned clips, each clip
// wrapping exactly one asset variant, plus output settings.
//
// Assets form a closed set (video, image, title, html, audio, luma). They
// encode with a "type" discriminator and Clip decodes them by peeking at it.
// Effect, filter, fit and output names are closed enumerations checked by
// Validate.
package edit
