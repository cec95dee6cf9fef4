package vtutil

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/deploymenttheory/go-msgreader/internal/logger"
	"github.com/deploymenttheory/go-msgreader/internal/utils/cryptoutil"
	"github.com/deploymenttheory/go-msgreader/internal/utils/errors"

	vt "github.com/VirusTotal/vt-go"
)

// EngineResult represents the result from a single antivirus engine
type EngineResult struct {
	Category      string `json:"category"`
	Result        string `json:"result"`
	Method        string `json:"method"`
	EngineVersion string `json:"engine_version"`
}

// FileReport is what VirusTotal knows about one file. Found is false
// when the hash has never been submitted.
type FileReport struct {
	SHA256        string                  `json:"sha256"`
	SHA1          string                  `json:"sha1,omitempty"`
	MD5           string                  `json:"md5,omitempty"`
	Found         bool                    `json:"found"`
	Name          string                  `json:"name,omitempty"`
	Type          string                  `json:"type,omitempty"`
	Size          int64                   `json:"size,omitempty"`
	Malicious     int                     `json:"malicious"`
	Suspicious    int                     `json:"suspicious"`
	TotalCount    int                     `json:"total_count"`
	ScanDate      time.Time               `json:"scan_date"`
	Permalink     string                  `json:"permalink"`
	Tags          []string                `json:"tags,omitempty"`
	EngineResults map[string]EngineResult `json:"engine_results,omitempty"`
}

// Permalink returns the GUI link for a file hash.
func Permalink(sha256 string) string {
	return "https://www.virustotal.com/gui/file/" + sha256
}

func validSHA256(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

// LookupHash returns the report for a SHA-256 hash. Unknown hashes yield
// a report with Found false rather than an error.
func (c *Client) LookupHash(ctx context.Context, sha256 string) (*FileReport, error) {
	sha256 = strings.ToLower(sha256)
	if !validSHA256(sha256) {
		return nil, fmt.Errorf("%w: not a SHA-256 hash: %q", errors.ErrInvalidArgument, sha256)
	}

	cacheKey := "file_report:" + sha256
	if report, found := c.cachedReport(cacheKey); found {
		logger.LogDebug("Retrieved file report from cache", map[string]interface{}{"sha256": sha256})
		return report, nil
	}

	var fileObj *vt.Object
	err := c.executeWithRetry(ctx, "file_lookup:"+sha256, func() error {
		var err error
		fileObj, err = c.lookup(ctx, sha256)
		return err
	})

	report := &FileReport{SHA256: sha256, Permalink: Permalink(sha256)}
	switch {
	case err != nil && isNotFound(err):
		logger.LogInfo("File not found in VirusTotal database", map[string]interface{}{"hash": sha256})
	case err != nil:
		return nil, err
	case fileObj == nil:
		return nil, fmt.Errorf("%w: empty response for %s", errors.ErrAPICommunicationError, sha256)
	default:
		parseFileObject(fileObj, report)
	}

	c.cacheReport(cacheKey, report)
	return report, nil
}

// LookupData hashes data and looks the hash up.
func (c *Client) LookupData(ctx context.Context, data []byte) (*FileReport, error) {
	hasher, err := cryptoutil.NewHasher(cryptoutil.SHA256)
	if err != nil {
		return nil, err
	}
	return c.LookupHash(ctx, hasher.Hash(data))
}

// number converts the numeric forms an attribute may take.
func number(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func attrString(obj *vt.Object, attr string) string {
	s, _ := obj.GetString(attr)
	return s
}

func attrNumber(obj *vt.Object, attr string) (int64, bool) {
	v, err := obj.Get(attr)
	if err != nil {
		return 0, false
	}
	return number(v)
}

// parseFileObject copies the attributes of a VirusTotal file object into
// report.
func parseFileObject(obj *vt.Object, report *FileReport) {
	report.Found = true
	report.SHA1 = attrString(obj, "sha1")
	report.MD5 = attrString(obj, "md5")

	report.Name = attrString(obj, "meaningful_name")
	if report.Name == "" {
		report.Name = attrString(obj, "name")
	}
	report.Type = attrString(obj, "type_description")
	if report.Type == "" {
		report.Type = attrString(obj, "type_tag")
	}

	if size, ok := attrNumber(obj, "size"); ok {
		report.Size = size
	}
	if ts, ok := attrNumber(obj, "last_analysis_date"); ok {
		report.ScanDate = time.Unix(ts, 0).UTC()
	}

	if stats, err := obj.Get("last_analysis_stats"); err == nil {
		if m, ok := stats.(map[string]interface{}); ok {
			for category, count := range m {
				n, ok := number(count)
				if !ok {
					continue
				}
				report.TotalCount += int(n)
				switch category {
				case "malicious":
					report.Malicious = int(n)
				case "suspicious":
					report.Suspicious = int(n)
				}
			}
		}
	}

	if results, err := obj.Get("last_analysis_results"); err == nil {
		if m, ok := results.(map[string]interface{}); ok {
			report.EngineResults = make(map[string]EngineResult, len(m))
			for engine, data := range m {
				engineData, ok := data.(map[string]interface{})
				if !ok {
					continue
				}
				var r EngineResult
				r.Category, _ = engineData["category"].(string)
				r.Result, _ = engineData["result"].(string)
				r.Method, _ = engineData["method"].(string)
				r.EngineVersion, _ = engineData["engine_version"].(string)
				report.EngineResults[engine] = r
			}
		}
	}

	if tags, err := obj.Get("tags"); err == nil {
		if list, ok := tags.([]interface{}); ok {
			for _, t := range list {
				if s, ok := t.(string); ok {
					report.Tags = append(report.Tags, s)
				}
			}
		}
	}
}
