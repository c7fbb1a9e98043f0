// Package ann provides the in-memory representation of time-aligned
// linguistic annotations and the consistency engine that keeps it valid.
//
// Format readers build these objects from external files; writers walk them
// to serialize. Neither lives here: the package has no I/O of its own.
//
// # Core Types
//
// The model is organized hierarchically:
//
//   - Transcription: root container of tiers, hierarchy, media, vocabularies
//   - Tier: ordered sequence of annotations sharing one localization kind
//   - Annotation: one Location paired with zero or more Labels
//   - Location: alternative localizations (Point, Interval or Disjoint)
//   - Label: alternative Tags, each optionally scored
//
// # Vagueness
//
// A Point carries a radius. Two points are equal when their windows
// [mid-radius, mid+radius] overlap, and a < b only when a's window ends
// before b's begins. Equality is therefore not transitive: with radius 0.01,
// 1.000 == 1.015 and 1.015 == 1.030 but 1.000 != 1.030.
//
// # Consistency
//
// Every mutation of a Tier or of an Annotation it owns is validated before
// it is applied: localization kind, the tier's Capabilities (which format
// profile it must fit), controlled vocabulary, label type, and the hierarchy
// links declared on the owning Transcription. A rejected mutation leaves
// every object exactly as it was.
//
// # Example
//
//	trs := ann.NewTranscription("demo")
//	phones, _ := trs.CreateTier("phones")
//	words, _ := trs.CreateTier("words")
//
//	iv := ann.MustInterval(ann.MustPoint(1.0, 0.005), ann.MustPoint(1.5, 0.005))
//	_, err := phones.CreateAnnotation(ann.NewLocation(iv), ann.NewLabel(ann.StrTag("a")))
//
//	err = trs.AddHierarchyLink(ann.TimeAlignment, phones, words)
package ann
