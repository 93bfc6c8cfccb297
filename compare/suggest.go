package compare

import (
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-mixcompare/analyze"
	"github.com/cwbudde/algo-mixcompare/analyze/masking"
	"github.com/cwbudde/algo-mixcompare/analyze/resonance"
)

// Resonance suggestion shaping. Cuts stay shallower and broader than
// the detected peak so corrections do not notch the mix audibly.
const (
	resonanceCutScale = 0.8
	maxResonanceCutDB = 8.0
	resonanceQScale   = 0.8
	maxResonanceQ     = 5.0
)

func (c *Comparator) bandDiffs(mix, ref *Analysis) []BandDiff {
	diffs := make([]BandDiff, 0, len(mix.Spectrum.Bands))

	for i, band := range mix.Spectrum.Bands {
		if i >= len(ref.Spectrum.Bands) {
			break
		}

		diff := band.EnergyDB - ref.Spectrum.Bands[i].EnergyDB

		status := StatusEqual

		switch {
		case diff > c.cfg.ToleranceDB:
			status = StatusLouder
		case diff < -c.cfg.ToleranceDB:
			status = StatusQuieter
		}

		diffs = append(diffs, BandDiff{
			Band:             band.Band,
			YourLevelDB:      band.EnergyDB,
			ReferenceLevelDB: ref.Spectrum.Bands[i].EnergyDB,
			DifferenceDB:     diff,
			Status:           status,
		})
	}

	return diffs
}

func (c *Comparator) maskingDiff(mix, ref *Analysis) MaskingDiff {
	diff := MaskingDiff{
		ClarityDelta:  mix.Masking.ClarityScore - ref.Masking.ClarityScore,
		MixOnlyIssues: []masking.Issue{},
	}

	for _, issue := range mix.Masking.Issues {
		if !hasIssue(ref.Masking.Issues, issue) {
			diff.MixOnlyIssues = append(diff.MixOnlyIssues, issue)
		}
	}

	return diff
}

// hasIssue reports whether issues contains an overlap of the same band
// pair. Band pairs are identified by their frequency range since both
// signals analyze the same critical bands.
func hasIssue(issues []masking.Issue, want masking.Issue) bool {
	for _, issue := range issues {
		if issue.LowHz == want.LowHz && issue.HighHz == want.HighHz {
			return true
		}
	}

	return false
}

func (c *Comparator) resonanceDiff(mix, ref *Analysis) ResonanceDiff {
	diff := ResonanceDiff{
		YourCount:      len(mix.Resonances),
		ReferenceCount: len(ref.Resonances),
		MixOnly:        []resonance.Resonance{},
	}

	for _, res := range mix.Resonances {
		if res.Severity.Rank() < analyze.SeverityModerate.Rank() {
			continue
		}

		if !matchesReference(ref.Resonances, res.FrequencyHz, c.cfg.ResonanceMatchHz) {
			diff.MixOnly = append(diff.MixOnly, res)
		}
	}

	return diff
}

// matchesReference reports whether the reference has a resonance within
// dist of freq. A shared resonance is likely part of the genre's sound
// and should not be cut.
func matchesReference(refs []resonance.Resonance, freq, dist float64) bool {
	for _, ref := range refs {
		if math.Abs(ref.FrequencyHz-freq) <= dist {
			return true
		}
	}

	return false
}

func (c *Comparator) dynamicsDiff(mix, ref *Analysis) DynamicsDiff {
	diff := DynamicsDiff{
		RMSDB:       mix.Dynamics.RMSDB - ref.Dynamics.RMSDB,
		LUFS:        mix.Dynamics.LUFSIntegrated - ref.Dynamics.LUFSIntegrated,
		CrestFactor: mix.Dynamics.CrestFactorDB - ref.Dynamics.CrestFactorDB,
		PLR:         mix.Dynamics.PLRDB - ref.Dynamics.PLRDB,
	}

	diff.Compression = compressionRecommendation(diff.CrestFactor)
	diff.Loudness = loudnessRecommendation(diff.LUFS)

	return diff
}

// compressionRecommendation maps a crest factor difference (your mix
// minus reference) to an action. Returns nil when the dynamics match
// within half a dB.
func compressionRecommendation(crestDiff float64) *Recommendation {
	switch {
	case crestDiff > 3:
		return &Recommendation{
			Action:   "add_compression",
			AmountDB: crestDiff,
			Message:  fmt.Sprintf("your mix is much more dynamic than the reference (%.1f dB higher crest factor); consider bus compression", crestDiff),
		}
	case crestDiff > 1.5:
		return &Recommendation{
			Action:   "add_compression",
			AmountDB: crestDiff,
			Message:  fmt.Sprintf("your mix is more dynamic than the reference (%.1f dB higher crest factor)", crestDiff),
		}
	case crestDiff > 0.5:
		return &Recommendation{
			Action:   "add_light_compression",
			AmountDB: crestDiff,
			Message:  fmt.Sprintf("your mix is slightly more dynamic than the reference (%.1f dB higher crest factor)", crestDiff),
		}
	case crestDiff < -3:
		return &Recommendation{
			Action:   "reduce_compression",
			AmountDB: crestDiff,
			Message:  fmt.Sprintf("your mix is much more compressed than the reference (%.1f dB lower crest factor); ease off limiting", -crestDiff),
		}
	case crestDiff < -1.5:
		return &Recommendation{
			Action:   "reduce_compression",
			AmountDB: crestDiff,
			Message:  fmt.Sprintf("your mix is more compressed than the reference (%.1f dB lower crest factor)", -crestDiff),
		}
	case crestDiff < -0.5:
		return &Recommendation{
			Action:   "reduce_light_compression",
			AmountDB: crestDiff,
			Message:  fmt.Sprintf("your mix is slightly more compressed than the reference (%.1f dB lower crest factor)", -crestDiff),
		}
	}

	return nil
}

// loudnessRecommendation maps an integrated loudness difference to a
// gain move. Returns nil within 1 LU.
func loudnessRecommendation(lufsDiff float64) *Recommendation {
	abs := math.Abs(lufsDiff)
	if abs <= 1 {
		return nil
	}

	direction := "quieter"
	if lufsDiff > 0 {
		direction = "louder"
	}

	qualifier := ""
	if abs > 3 {
		qualifier = "significantly "
	}

	return &Recommendation{
		Action:   "adjust_gain",
		AmountDB: -lufsDiff,
		Message:  fmt.Sprintf("your mix is %s%.1f LU %s than the reference", qualifier, abs, direction),
	}
}

func (c *Comparator) eqAdjustments(res *Result) []EQAdjustment {
	adjustments := []EQAdjustment{}

	for _, band := range res.Bands {
		if math.Abs(band.DifferenceDB) <= c.cfg.SignificantDB {
			continue
		}

		kind := AdjustCut
		if band.DifferenceDB < 0 {
			kind = AdjustBoost
		}

		adjustments = append(adjustments, EQAdjustment{
			FrequencyHz: band.CenterHz,
			GainDB:      -band.DifferenceDB,
			Q:           c.cfg.DefaultQ,
			Type:        kind,
			Reason: fmt.Sprintf("%s is %.1f dB %s than the reference",
				band.Name, math.Abs(band.DifferenceDB), band.Status),
		})
	}

	for _, r := range res.Resonances.MixOnly {
		cut := math.Min(resonanceCutScale*r.ProminenceDB, maxResonanceCutDB)
		q := math.Min(resonanceQScale*r.Q, maxResonanceQ)

		adjustments = append(adjustments, EQAdjustment{
			FrequencyHz: r.FrequencyHz,
			GainDB:      -cut,
			Q:           q,
			Type:        AdjustCut,
			Reason: fmt.Sprintf("%s severity resonance at %.0f Hz not present in the reference",
				r.Severity, r.FrequencyHz),
		})
	}

	return adjustments
}

// summaryEntry ranks a finding for the summary listing.
type summaryEntry struct {
	text      string
	magnitude float64
	freq      float64
}

func (c *Comparator) summarize(res *Result) []string {
	var entries []summaryEntry

	for _, band := range res.Bands {
		if math.Abs(band.DifferenceDB) <= c.cfg.SignificantDB {
			continue
		}

		entries = append(entries, summaryEntry{
			text: fmt.Sprintf("%s (%.0f-%.0f Hz) is %.1f dB %s than the reference",
				band.Name, band.LowHz, band.HighHz, math.Abs(band.DifferenceDB), band.Status),
			magnitude: math.Abs(band.DifferenceDB),
			freq:      band.CenterHz,
		})
	}

	for _, r := range res.Resonances.MixOnly {
		entries = append(entries, summaryEntry{
			text: fmt.Sprintf("%s severity resonance at %.0f Hz (%.1f dB prominence) not found in the reference",
				r.Severity, r.FrequencyHz, r.ProminenceDB),
			magnitude: r.ProminenceDB,
			freq:      r.FrequencyHz,
		})
	}

	for _, issue := range res.Masking.MixOnlyIssues {
		entries = append(entries, summaryEntry{
			text: fmt.Sprintf("possible masking between %s and %s (%.1f dB separation)",
				issue.Bands[0], issue.Bands[1], issue.SeparationDB),
			magnitude: c.maskingShortfall(issue),
			freq:      issue.LowHz,
		})
	}

	if rec := res.Dynamics.Compression; rec != nil && math.Abs(res.Dynamics.CrestFactor) > 1.5 {
		entries = append(entries, summaryEntry{
			text:      rec.Message,
			magnitude: math.Abs(res.Dynamics.CrestFactor),
		})
	}

	if rec := res.Dynamics.Loudness; rec != nil {
		entries = append(entries, summaryEntry{
			text:      rec.Message,
			magnitude: math.Abs(res.Dynamics.LUFS),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].magnitude != entries[j].magnitude {
			return entries[i].magnitude > entries[j].magnitude
		}

		return entries[i].freq < entries[j].freq
	})

	if len(entries) > c.cfg.MaxSummary {
		entries = entries[:c.cfg.MaxSummary]
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, entry.text)
	}

	if len(lines) == 0 {
		lines = append(lines, "no significant differences from the reference")
	}

	return lines
}

// maskingShortfall measures how far below the separation threshold an
// overlap falls, so tighter overlaps rank higher in the summary.
func (c *Comparator) maskingShortfall(issue masking.Issue) float64 {
	shortfall := c.cfg.MaskingSeparationDB - issue.SeparationDB
	if shortfall < 0 {
		shortfall = 0
	}

	return shortfall
}
