// Package production provides production integrations: persistence, event publishing, visualization.
package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comalice/storybook/internal/core"
)

// codec is how a file persister encodes snapshots.
type codec struct {
	name      string
	ext       string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

var (
	jsonCodec = codec{
		name: "json",
		ext:  ".json",
		marshal: func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		},
		unmarshal: json.Unmarshal,
	}
	yamlCodec = codec{name: "yaml", ext: ".yaml", marshal: yaml.Marshal, unmarshal: yaml.Unmarshal}
)

// filePersister keeps the latest snapshot of every actor in one file per
// actor id.
type filePersister struct {
	dir   string
	codec codec
}

func newFilePersister(dir string, c codec) (filePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return filePersister{}, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return filePersister{dir: dir, codec: c}, nil
}

var unsafeName = strings.NewReplacer("/", "_", `\`, "_", "..", "_")

func (p filePersister) path(actorID string) string {
	return filepath.Join(p.dir, unsafeName.Replace(actorID)+p.codec.ext)
}

func (p filePersister) Save(ctx context.Context, snapshot core.MachineSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := p.codec.marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%s marshal %s: %w", p.codec.name, snapshot.ActorID, err)
	}
	fn := p.path(snapshot.ActorID)
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p filePersister) Load(ctx context.Context, actorID string) (core.MachineSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return core.MachineSnapshot{}, err
	}
	fn := p.path(actorID)
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.MachineSnapshot{}, fmt.Errorf("actor %q: %w", actorID, os.ErrNotExist)
		}
		return core.MachineSnapshot{}, fmt.Errorf("read %s: %w", fn, err)
	}

	var snapshot core.MachineSnapshot
	if err := p.codec.unmarshal(data, &snapshot); err != nil {
		return core.MachineSnapshot{}, fmt.Errorf("%s unmarshal: %w", p.codec.name, err)
	}
	snapshot.ActorID = actorID
	return snapshot, nil
}

// JSONPersister is a file-based persister using JSON serialization.
type JSONPersister struct{ filePersister }

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	fp, err := newFilePersister(dir, jsonCodec)
	if err != nil {
		return nil, err
	}
	return &JSONPersister{fp}, nil
}

// YAMLPersister is a file-based persister using YAML serialization.
type YAMLPersister struct{ filePersister }

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	fp, err := newFilePersister(dir, yamlCodec)
	if err != nil {
		return nil, err
	}
	return &YAMLPersister{fp}, nil
}

// NewPersister picks the persister for format ("json" or "yaml").
func NewPersister(format, dir string) (core.Persister, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONPersister(dir)
	case "yaml", "yml", "":
		return NewYAMLPersister(dir)
	}
	return nil, fmt.Errorf("unknown snapshot format %q", format)
}
