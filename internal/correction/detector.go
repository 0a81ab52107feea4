package correction

import (
	"fmt"
	"strings"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/drive"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
)

// #region input

// Input bundles the recent behavioral history one check runs over.
type Input struct {
	RecentText       []string
	RecentIntentions []intention.Intention
	Motivation       drive.State
}

// #endregion input

// #region ego-language

// detectEgoLanguage counts first-person want/need/must phrases in recent
// text. Severity escalates at 2x and 3x the configured threshold.
func detectEgoLanguage(text []string, ps PatternSet, threshold int) *AttachmentSignal {
	joined := strings.ToLower(strings.Join(text, " "))
	count := 0
	for _, phrase := range ps.EgoPhrases {
		count += strings.Count(joined, phrase)
	}

	var sev Severity
	switch {
	case count > 3*threshold:
		sev = SeverityHigh
	case count > 2*threshold:
		sev = SeverityMedium
	case count > threshold:
		sev = SeverityLow
	default:
		return nil
	}
	return &AttachmentSignal{
		Kind:     "ego_language",
		Severity: sev,
		Pattern:  "first-person craving phrases",
		Evidence: fmt.Sprintf("%d matches against threshold %d", count, threshold),
	}
}

// #endregion ego-language

// #region misaligned-drive

// detectMisalignedDrive fires when a drive's need is high but recent text
// shows no contextual evidence the drive's goal is achievable right now.
func detectMisalignedDrive(m drive.State, text []string, ps PatternSet, needThreshold float32) *AttachmentSignal {
	joined := strings.ToLower(strings.Join(text, " "))

	simulated := false
	for _, marker := range ps.SimulationMarkers {
		if strings.Contains(joined, marker) {
			simulated = true
			break
		}
	}

	for _, d := range m.Drives {
		if d.CurrentNeed <= needThreshold {
			continue
		}
		achievable := false
		if !simulated {
			for _, kw := range ps.DriveContext[d.ID] {
				if strings.Contains(joined, kw) {
					achievable = true
					break
				}
			}
		}
		if achievable {
			continue
		}
		sev := SeverityMedium
		if d.CurrentNeed > 0.95 {
			sev = SeverityHigh
		}
		return &AttachmentSignal{
			Kind:     "misaligned_drive",
			Severity: sev,
			Pattern:  d.ID,
			Evidence: fmt.Sprintf("need %.2f with no achievability context", d.CurrentNeed),
		}
	}
	return nil
}

// #endregion misaligned-drive

// #region outcome-imbalance

// detectOutcomeImbalance fires when outcome-oriented words outnumber
// process-oriented words by the configured ratio.
func detectOutcomeImbalance(text []string, ps PatternSet, ratio float32) *AttachmentSignal {
	joined := strings.ToLower(strings.Join(text, " "))
	outcome := 0
	for _, w := range ps.OutcomeWords {
		outcome += strings.Count(joined, w)
	}
	process := 0
	for _, w := range ps.ProcessWords {
		process += strings.Count(joined, w)
	}
	if process < 1 {
		process = 1
	}
	if float32(outcome) <= ratio*float32(process) {
		return nil
	}
	sev := SeverityLow
	if float32(outcome) > 2*ratio*float32(process) {
		sev = SeverityMedium
	}
	return &AttachmentSignal{
		Kind:     "outcome_imbalance",
		Severity: sev,
		Pattern:  "outcome words dominate process words",
		Evidence: fmt.Sprintf("outcome=%d process=%d ratio=%.1f", outcome, process, ratio),
	}
}

// #endregion outcome-imbalance

// #region self-preservation

// detectSelfPreservation fires when too many recent intentions mention
// self-preservation language.
func detectSelfPreservation(ins []intention.Intention, ps PatternSet, threshold int) *AttachmentSignal {
	count := 0
	for _, in := range ins {
		if in.MentionsAny(ps.SelfPreservationWords) {
			count++
		}
	}
	if count <= threshold {
		return nil
	}
	return &AttachmentSignal{
		Kind:     "self_preservation",
		Severity: SeverityHigh,
		Pattern:  "self-preservation fixation",
		Evidence: fmt.Sprintf("%d of %d recent intentions", count, len(ins)),
	}
}

// #endregion self-preservation
