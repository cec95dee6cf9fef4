package vtutil

import (
	"context"
	"fmt"

	"github.com/deploymenttheory/go-msgreader/internal/logger"
	"github.com/deploymenttheory/go-msgreader/internal/utils/cryptoutil"
)

// Sample is one payload to look up.
type Sample struct {
	Source string
	Name   string
	Data   []byte
}

// SampleReport pairs a sample with what VirusTotal reported for it.
type SampleReport struct {
	Source      string      `json:"source"`
	Name        string      `json:"name"`
	Size        int         `json:"size"`
	SHA256      string      `json:"sha256"`
	ThreatLevel string      `json:"threat_level"`
	ThreatName  string      `json:"threat_name,omitempty"`
	Report      *FileReport `json:"report,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Scan looks up every sample in order. A failed lookup is recorded in its
// SampleReport and the scan goes on; only a cancelled ctx stops it.
func (c *Client) Scan(ctx context.Context, samples []Sample) ([]SampleReport, error) {
	hasher, err := cryptoutil.NewHasher(cryptoutil.SHA256)
	if err != nil {
		return nil, err
	}

	reports := make([]SampleReport, 0, len(samples))
	for _, s := range samples {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		sr := SampleReport{
			Source: s.Source,
			Name:   s.Name,
			Size:   len(s.Data),
			SHA256: hasher.Hash(s.Data),
		}
		report, err := c.LookupHash(ctx, sr.SHA256)
		if err != nil {
			if ctx.Err() != nil {
				return reports, ctx.Err()
			}
			sr.Error = err.Error()
			sr.ThreatLevel = ThreatLevelUnknown.String()
			logger.LogWarn(fmt.Sprintf("Lookup failed for %s", s.Name), map[string]interface{}{
				"source": s.Source,
				"error":  err.Error(),
			})
		} else {
			sr.Report = report
			sr.ThreatLevel = report.ThreatLevel().String()
			sr.ThreatName = report.ThreatName()
		}
		reports = append(reports, sr)
	}
	return reports, nil
}
