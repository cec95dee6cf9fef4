package vtutil

import "sort"

// ThreatLevel represents a standardized threat severity
type ThreatLevel int

// Threat level constants
const (
	ThreatLevelClean    ThreatLevel = 0
	ThreatLevelLow      ThreatLevel = 1
	ThreatLevelMedium   ThreatLevel = 2
	ThreatLevelHigh     ThreatLevel = 3
	ThreatLevelCritical ThreatLevel = 4
	ThreatLevelUnknown  ThreatLevel = -1
)

func (l ThreatLevel) String() string {
	switch l {
	case ThreatLevelClean:
		return "Clean"
	case ThreatLevelLow:
		return "Low"
	case ThreatLevelMedium:
		return "Medium"
	case ThreatLevelHigh:
		return "High"
	case ThreatLevelCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// ThreatLevel grades the share of engines that flagged the file as
// malicious. Files VirusTotal has not seen are Unknown.
func (r *FileReport) ThreatLevel() ThreatLevel {
	if !r.Found || r.TotalCount == 0 {
		return ThreatLevelUnknown
	}

	ratio := float64(r.Malicious) / float64(r.TotalCount)

	switch {
	case ratio == 0:
		return ThreatLevelClean
	case ratio < 0.05:
		return ThreatLevelLow
	case ratio < 0.15:
		return ThreatLevelMedium
	case ratio < 0.30:
		return ThreatLevelHigh
	default:
		return ThreatLevelCritical
	}
}

// ThreatName returns the detection name reported by most engines. Ties go
// to the name that sorts first.
func (r *FileReport) ThreatName() string {
	counts := make(map[string]int)
	for _, result := range r.EngineResults {
		if result.Result != "" && result.Category != "undetected" {
			counts[result.Result]++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	mostCommon, maxCount := "", 0
	for _, name := range names {
		if counts[name] > maxCount {
			mostCommon, maxCount = name, counts[name]
		}
	}
	return mostCommon
}
