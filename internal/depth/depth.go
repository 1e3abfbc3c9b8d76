// Package depth maps a depth label to how much material is gathered and how
// verbose the resulting summary should be.
package depth

import (
	"fmt"

	"github.com/mohammad-safakhou/skimmer/models"
)

// Search quality hints understood by the providers.
const (
	QualityBasic    = "basic"
	QualityAdvanced = "advanced"
)

// Profile parameterizes one miss-path run.
type Profile struct {
	Breadth            int
	CharLimitPerSource int
	Instruction        string
	SearchQuality      string
}

var profiles = map[models.Depth]Profile{
	models.DepthLess: {
		Breadth:            3,
		CharLimitPerSource: 5000,
		SearchQuality:      QualityBasic,
		Instruction: "Provide a brief, high-level overview suitable for a beginner. " +
			"Include only the most essential facts. Use simple language.",
	},
	models.DepthMedium: {
		Breadth:            6,
		CharLimitPerSource: 10000,
		SearchQuality:      QualityAdvanced,
		Instruction: "Give a balanced summary with moderate detail. Cover the key points, " +
			"main concepts, and important details. Assume the reader has basic familiarity.",
	},
	models.DepthHigh: {
		Breadth:            10,
		CharLimitPerSource: 20000,
		SearchQuality:      QualityAdvanced,
		Instruction: "Provide a comprehensive and in-depth explanation. Include all significant aspects, " +
			"technical details, historical context, applications, and any nuances. " +
			"Assume the reader wants a thorough understanding.",
	},
}

// ProfileFor returns the fixed profile for d. Callers validate d first; an
// unknown label is still reported rather than defaulted.
func ProfileFor(d models.Depth) (Profile, error) {
	p, ok := profiles[d]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", models.ErrInvalidDepth, d)
	}
	return p, nil
}
