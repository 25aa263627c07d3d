package adapters

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"config-packager/internal/ports"
	"config-packager/internal/types"
)

const configFileExt = ".yml"

// FileStorageAdapter keeps one YAML file per configuration item in Dir.
type FileStorageAdapter struct {
	Dir string
}

func NewFileStorageAdapter(dir string) FileStorageAdapter {
	return FileStorageAdapter{Dir: dir}
}

func (a FileStorageAdapter) Read(name string) (types.Document, bool, error) {
	path, err := a.itemPath(name)
	if err != nil {
		return nil, false, err
	}
	return readDocument(path)
}

func (a FileStorageAdapter) Write(name string, doc types.Document) error {
	path, err := a.itemPath(name)
	if err != nil {
		return err
	}
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func (a FileStorageAdapter) List() ([]string, error) {
	return listDocuments(a.Dir)
}

func (a FileStorageAdapter) itemPath(name string) (string, error) {
	if a.Dir == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("storage directory is empty")
	}
	if err := validateItemName(name); err != nil {
		return "", err
	}
	return filepath.Join(a.Dir, name+configFileExt), nil
}

func validateItemName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid configuration name %q", name))
	}
	return nil
}

func readDocument(path string) (types.Document, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read %s", path)).
			WithCause(err)
	}
	doc := types.Document{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse %s", path)).
			WithCause(err)
	}
	for key, value := range doc {
		doc[key] = plainValue(value)
	}
	return doc, true, nil
}

// plainValue turns nested documents decoded by yaml.v3 into map[string]any.
func plainValue(value any) any {
	switch typed := value.(type) {
	case types.Document:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = plainValue(item)
		}
		return out
	case map[string]any:
		for key, item := range typed {
			typed[key] = plainValue(item)
		}
		return typed
	case []any:
		for i, item := range typed {
			typed[i] = plainValue(item)
		}
		return typed
	default:
		return value
	}
}

func encodeDocument(doc types.Document) ([]byte, error) {
	if len(doc) == 0 {
		return []byte("{}\n"), nil
	}
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(map[string]any(doc)); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode configuration").
			WithCause(err)
	}
	if err := encoder.Close(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode configuration").
			WithCause(err)
	}
	return buf.Bytes(), nil
}

func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to list %s", dir)).
			WithCause(err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), configFileExt) || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), configFileExt))
	}
	sort.Strings(names)
	return names, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to create directory %s", dir)).
			WithCause(err)
	}
	return nil
}

// writeFileAtomic replaces path through a temporary file in the same
// directory so readers never see a partial document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to write %s", path)).
			WithCause(err)
	}
	tmpName := tmp.Name()
	_, err = io.Copy(tmp, bytes.NewReader(data))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0644)
	}
	if err == nil {
		err = os.Rename(tmpName, path)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to write %s", path)).
			WithCause(err)
	}
	return nil
}

var _ ports.StoragePort = FileStorageAdapter{}
