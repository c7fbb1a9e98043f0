package formats

// LossClass represents how much of a transcription survives in a format.
type LossClass string

// Loss class constants, from most to least fidelity.
const (
	// LossL0 indicates nothing is lost.
	LossL0 LossClass = "L0"

	// LossL1 indicates annotations survive but auxiliary data does not
	// (metadata, media, controlled vocabularies, hierarchy links).
	LossL1 LossClass = "L1"

	// LossL2 indicates reduced precision: radius, alternatives beyond the
	// best one, gaps filled with empty intervals.
	LossL2 LossClass = "L2"

	// LossL3 indicates annotations or tiers are dropped or reshaped.
	LossL3 LossClass = "L3"

	// LossL4 indicates no annotation can be written at all.
	LossL4 LossClass = "L4"
)

var lossLevels = map[LossClass]int{
	LossL0: 0,
	LossL1: 1,
	LossL2: 2,
	LossL3: 3,
	LossL4: 4,
}

// IsValid returns true if the loss class is valid.
func (l LossClass) IsValid() bool {
	_, ok := lossLevels[l]
	return ok
}

// Level returns the numeric level (0-4) of the loss class, or -1.
func (l LossClass) Level() int {
	if n, ok := lossLevels[l]; ok {
		return n
	}
	return -1
}

// IsLossless returns true if this loss class indicates no data loss.
func (l LossClass) IsLossless() bool {
	return l == LossL0
}

// IsSemanticallyLossless returns true if every annotation survives.
func (l LossClass) IsSemanticallyLossless() bool {
	return l == LossL0 || l == LossL1
}

// worse returns the class with the lower fidelity.
func worse(a, b LossClass) LossClass {
	if b.Level() > a.Level() {
		return b
	}
	return a
}

// LostElement describes one piece of data the format cannot carry.
type LostElement struct {
	// Path locates the element (e.g. "PhonAlign", "PhonAlign/12").
	Path string `json:"path"`

	// ElementType describes what is lost (e.g. "radius", "hierarchy").
	ElementType string `json:"element_type"`

	// Reason explains why the element is lost.
	Reason string `json:"reason"`

	// Class is the loss class of this element alone.
	Class LossClass `json:"class"`
}

// Report documents what a transcription loses in a format.
type Report struct {
	// Transcription is the name of the checked transcription.
	Transcription string `json:"transcription"`

	// Format is the profile name.
	Format string `json:"format"`

	// LossClass is the worst class over the lost elements.
	LossClass LossClass `json:"loss_class"`

	// LostElements lists the data the format cannot carry.
	LostElements []LostElement `json:"lost_elements,omitempty"`

	// Warnings contains issues that do not lose data.
	Warnings []string `json:"warnings,omitempty"`
}

// HasLoss returns true if any elements are lost.
func (r *Report) HasLoss() bool {
	return len(r.LostElements) > 0 || r.LossClass.Level() > 0
}

// AddLostElement adds a lost element and raises the report class.
func (r *Report) AddLostElement(path, elementType, reason string, class LossClass) {
	r.LostElements = append(r.LostElements, LostElement{
		Path:        path,
		ElementType: elementType,
		Reason:      reason,
		Class:       class,
	})
	r.LossClass = worse(r.LossClass, class)
}

// AddWarning adds a warning to the report.
func (r *Report) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}
