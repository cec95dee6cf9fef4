// Package cfb adapts Microsoft compound files, as read by mscfb, to the
// storage tree that pkg/msg consumes.
package cfb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"

	"github.com/richardlehane/mscfb"

	"github.com/deploymenttheory/go-msgreader/internal/logger"
	errs "github.com/deploymenttheory/go-msgreader/internal/utils/errors"
	"github.com/deploymenttheory/go-msgreader/pkg/msg"
)

// RootName is the name given to the root storage.
const RootName = "Root Entry"

// Open reads the compound file at path into memory.
func Open(path string) (*msg.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errs.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrFileReadError, err)
	}
	defer f.Close()

	root, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// Parse reads a compound file held in memory.
func Parse(data []byte) (*msg.Node, error) {
	return Read(bytes.NewReader(data))
}

// Read walks every directory entry of the compound file behind ra and
// returns the equivalent in-memory storage tree. Stream contents are read
// eagerly.
func Read(ra io.ReaderAt) (*msg.Node, error) {
	doc, err := mscfb.New(ra)
	if err != nil {
		var cerr mscfb.Error
		if errors.As(err, &cerr) && cerr.Typ() == mscfb.ErrFormat {
			return nil, fmt.Errorf("%w: %v", errs.ErrNotCompoundFile, err)
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrStorageRead, err)
	}

	root := msg.NewStorage(RootName)

	// Entries arrive depth first with every storage directly followed by
	// its subtree. mscfb may alias the Path slices of siblings, so only
	// their length is trusted: stack[d] is the storage that receives
	// entries at depth d.
	stack := []*msg.Node{root}
	var streams, storages int
	for entry, err := doc.Next(); ; entry, err = doc.Next() {
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrStorageRead, err)
		}

		depth := len(entry.Path)
		if depth >= len(stack) {
			return nil, fmt.Errorf("%w: entry %q has no parent storage at depth %d", errs.ErrStorageRead, entry.Name, depth)
		}
		stack = stack[:depth+1]
		parent := stack[depth]
		name := entryName(entry)

		if entry.FileInfo().IsDir() {
			node := msg.NewStorage(name)
			parent.Add(node)
			stack = append(stack, node)
			storages++
			continue
		}

		data, err := readAll(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: stream %q: %v", errs.ErrStorageRead, name, err)
		}
		parent.Add(msg.NewStream(name, data))
		streams++
	}

	logger.LogDebug("compound file loaded", map[string]interface{}{
		"storages": storages,
		"streams":  streams,
	})
	return root, nil
}

// entryName restores the control character mscfb strips from names such
// as "\x01Ole10Native".
func entryName(f *mscfb.File) string {
	if f.Initial != 0 && !unicode.IsPrint(rune(f.Initial)) {
		return string(rune(f.Initial)) + f.Name
	}
	return f.Name
}

func readAll(f *mscfb.File) ([]byte, error) {
	if f.Size <= 0 {
		return []byte{}, nil
	}
	buf := make([]byte, f.Size)
	n, err := io.ReadFull(f, buf)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == f.Size) {
		return nil, err
	}
	return buf[:n], nil
}
