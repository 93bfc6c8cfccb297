package compare

import (
	"github.com/cwbudde/algo-mixcompare/analyze/dynamics"
	"github.com/cwbudde/algo-mixcompare/analyze/masking"
	"github.com/cwbudde/algo-mixcompare/analyze/resonance"
	"github.com/cwbudde/algo-mixcompare/analyze/spectrum"
)

// Analysis bundles the four per-signal reports.
type Analysis struct {
	Spectrum   spectrum.Report       `json:"frequency_balance"`
	Masking    masking.Report        `json:"masking"`
	Resonances []resonance.Resonance `json:"resonances"`
	Dynamics   dynamics.Report       `json:"dynamics"`
}

// BandStatus labels a per-band level difference.
type BandStatus string

// Band status values; Equal applies within the configured tolerance.
const (
	StatusLouder  BandStatus = "louder"
	StatusQuieter BandStatus = "quieter"
	StatusEqual   BandStatus = "equal"
)

// BandDiff is the level difference of one band, your mix minus reference.
// The levels are the integrated spectral band energies in dB, so the
// difference is free of bandpass filter leakage.
type BandDiff struct {
	spectrum.Band

	YourLevelDB      float64    `json:"your_level_db"`
	ReferenceLevelDB float64    `json:"reference_level_db"`
	DifferenceDB     float64    `json:"difference_db"`
	Status           BandStatus `json:"status"`
}

// AdjustmentType says which way an EQ move goes.
type AdjustmentType string

// EQ adjustment directions.
const (
	AdjustCut   AdjustmentType = "cut"
	AdjustBoost AdjustmentType = "boost"
)

// EQAdjustment is one corrective EQ move pulling the mix toward the
// reference.
type EQAdjustment struct {
	FrequencyHz float64        `json:"frequency_hz"`
	GainDB      float64        `json:"gain_db"`
	Q           float64        `json:"q"`
	Type        AdjustmentType `json:"type"`
	Reason      string         `json:"reason"`
}

// MaskingDiff compares frequency separation between the two signals.
type MaskingDiff struct {
	ClarityDelta float64 `json:"clarity_delta"`
	// MixOnlyIssues are overlaps flagged in your mix that the reference
	// does not share.
	MixOnlyIssues []masking.Issue `json:"mix_only_issues"`
}

// ResonanceDiff compares detected resonances between the two signals.
type ResonanceDiff struct {
	YourCount      int `json:"your_count"`
	ReferenceCount int `json:"reference_count"`
	// MixOnly are resonances of at least moderate severity with no
	// reference counterpart nearby.
	MixOnly []resonance.Resonance `json:"mix_only"`
}

// Recommendation is one dynamics-related corrective action.
type Recommendation struct {
	Action   string  `json:"action"`
	AmountDB float64 `json:"amount_db,omitempty"`
	Message  string  `json:"message"`
}

// DynamicsDiff compares loudness and dynamic range, your mix minus
// reference, with derived compression and gain guidance.
type DynamicsDiff struct {
	RMSDB       float64 `json:"rms_db"`
	LUFS        float64 `json:"lufs"`
	CrestFactor float64 `json:"crest_factor"`
	PLR         float64 `json:"plr"`

	Compression *Recommendation `json:"compression,omitempty"`
	Loudness    *Recommendation `json:"loudness,omitempty"`
}

// Result is the complete comparison of your mix against the reference.
// It is immutable once returned and never persisted by the engine.
type Result struct {
	YourMix   Analysis `json:"your_mix"`
	Reference Analysis `json:"reference"`

	Bands         []BandDiff     `json:"bands"`
	Masking       MaskingDiff    `json:"masking"`
	Resonances    ResonanceDiff  `json:"resonances"`
	Dynamics      DynamicsDiff   `json:"dynamics"`
	EQAdjustments []EQAdjustment `json:"eq_adjustments"`

	// Summary lists the main issues ranked by deviation magnitude.
	Summary []string `json:"summary"`
}
