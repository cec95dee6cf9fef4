package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-msgreader/internal/logger"
	"github.com/deploymenttheory/go-msgreader/internal/rtf"
	"github.com/deploymenttheory/go-msgreader/internal/utils/cryptoutil"
	errs "github.com/deploymenttheory/go-msgreader/internal/utils/errors"
	"github.com/deploymenttheory/go-msgreader/internal/utils/fsutil"
	"github.com/deploymenttheory/go-msgreader/internal/utils/jsonutil"
	"github.com/deploymenttheory/go-msgreader/pkg/msg"
)

// ManifestName is the file Extract writes at the top of its output.
const ManifestName = "manifest.json"

// Kinds of extracted files.
const (
	PartText       = "body-text"
	PartHTML       = "body-html"
	PartRTF        = "body-rtf"
	PartAttachment = "attachment"
)

// ExtractOptions controls Extract.
type ExtractOptions struct {
	Dir             string
	IncludeEmbedded bool
	RTF             bool
	// Hashes recorded per file in the manifest; SHA-256 when empty.
	Hashes []cryptoutil.HashAlgorithm
}

// ManifestEntry describes one extracted file.
type ManifestEntry struct {
	Path   string            `json:"path"`
	Source string            `json:"source"`
	Kind   string            `json:"kind"`
	Size   int               `json:"size"`
	Hashes map[string]string `json:"hashes"`
}

// Manifest lists what Extract wrote, in write order.
type Manifest struct {
	Subject string          `json:"subject"`
	Files   []ManifestEntry `json:"files"`
	Skipped []string        `json:"skipped,omitempty"`
}

type extractor struct {
	opts     ExtractOptions
	hashers  []cryptoutil.Hasher
	manifest *Manifest
}

// Extract writes the bodies and attachment payloads of m below opts.Dir.
// Attachments go to "attachments/", embedded messages to
// "embedded/<n> <name>/" with the same layout. The manifest is written to
// ManifestName and returned.
func Extract(m *msg.Message, opts ExtractOptions) (*Manifest, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("%w: no output directory", errs.ErrInvalidArgument)
	}
	algorithms := opts.Hashes
	if len(algorithms) == 0 {
		algorithms = []cryptoutil.HashAlgorithm{cryptoutil.SHA256}
	}
	x := &extractor{opts: opts, manifest: &Manifest{Subject: m.Subject(), Files: []ManifestEntry{}}}
	for _, alg := range algorithms {
		h, err := cryptoutil.NewHasher(alg)
		if err != nil {
			return nil, err
		}
		x.hashers = append(x.hashers, h)
	}

	if err := fsutil.CreateDirIfNotExists(opts.Dir); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrFileWriteError, err)
	}
	if err := x.message(m, opts.Dir); err != nil {
		return nil, err
	}
	if err := jsonutil.WriteJSON(filepath.Join(opts.Dir, ManifestName), x.manifest); err != nil {
		return nil, err
	}

	logger.LogInfo("message extracted", map[string]interface{}{
		"dir":     opts.Dir,
		"files":   len(x.manifest.Files),
		"skipped": len(x.manifest.Skipped),
	})
	return x.manifest, nil
}

func (x *extractor) message(m mailView, dir string) error {
	if body := m.Body(); body != "" {
		if err := x.write(dir, "body.txt", m.Path(), PartText, []byte(body)); err != nil {
			return err
		}
	}
	if html := m.BodyHTML(); html != "" {
		if err := x.write(dir, "body.html", m.Path(), PartHTML, []byte(html)); err != nil {
			return err
		}
	}
	if x.opts.RTF {
		if compressed, ok := m.RTFCompressed(); ok {
			body, err := rtf.Decompress(compressed)
			if err != nil {
				logger.LogWarn("RTF body not decompressed", map[string]interface{}{
					"object": m.Path(),
					"error":  err.Error(),
				})
			} else if err := x.write(dir, "body.rtf", m.Path(), PartRTF, body); err != nil {
				return err
			}
		}
	}

	attachDir := filepath.Join(dir, "attachments")
	for _, a := range m.Attachments() {
		if em := a.EmbeddedMessage(); em != nil {
			if !x.opts.IncludeEmbedded {
				x.skip(a.Path(), "embedded message")
				continue
			}
			name := fmt.Sprintf("%d %s", a.AttachNumber(), fsutil.SanitizeFilename(embeddedName(a, em)))
			if err := x.message(em, fsutil.UniquePath(filepath.Join(dir, "embedded"), name)); err != nil {
				return err
			}
			continue
		}
		data, ok := a.Data()
		if !ok {
			x.skip(a.Path(), a.Method().String())
			continue
		}
		if err := x.write(attachDir, fsutil.SanitizeFilename(a.Filename()), a.Path(), PartAttachment, data); err != nil {
			return err
		}
	}
	return nil
}

func embeddedName(a *msg.Attachment, em *msg.EmbeddedMessage) string {
	if s := em.Subject(); s != "" {
		return s
	}
	return strings.TrimSuffix(a.Filename(), filepath.Ext(a.Filename()))
}

func (x *extractor) write(dir, name, source, kind string, data []byte) error {
	if err := fsutil.CreateDirIfNotExists(dir); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrFileWriteError, err)
	}
	path := fsutil.UniquePath(dir, name)
	if err := fsutil.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %s: %v", errs.ErrFileWriteError, path, err)
	}

	rel, err := filepath.Rel(x.opts.Dir, path)
	if err != nil {
		rel = path
	}
	entry := ManifestEntry{
		Path:   filepath.ToSlash(rel),
		Source: source,
		Kind:   kind,
		Size:   len(data),
		Hashes: make(map[string]string, len(x.hashers)),
	}
	for _, h := range x.hashers {
		entry.Hashes[string(h.Algorithm())] = h.Hash(data)
	}
	x.manifest.Files = append(x.manifest.Files, entry)

	logger.LogDebug("file written", map[string]interface{}{"path": entry.Path, "size": entry.Size})
	return nil
}

func (x *extractor) skip(source, reason string) {
	x.manifest.Skipped = append(x.manifest.Skipped, source+": "+reason)
}
