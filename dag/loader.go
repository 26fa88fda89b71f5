package dag

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// PipelineLoader loads pipeline descriptors by name.
type PipelineLoader interface {
	Load(name string) (*Pipeline, error)
}

// FilePipelineLoader loads pipelines from YAML or JSON files on disk.
type FilePipelineLoader struct {
	dirs []string
}

// NewFilePipelineLoader creates a loader that searches the given directories
// for pipeline files.
func NewFilePipelineLoader(dirs ...string) PipelineLoader {
	return &FilePipelineLoader{dirs: dirs}
}

var pipelineExts = []string{".yaml", ".yml", ".json"}

// Load searches for {name}.yaml, {name}.yml or {name}.json in each
// directory and its immediate subdirectories.
func (l *FilePipelineLoader) Load(name string) (*Pipeline, error) {
	for _, dir := range l.dirs {
		for _, ext := range pipelineExts {
			path := filepath.Join(dir, name+ext)
			if p, err := LoadPipelineFile(path); err == nil {
				return p, nil
			}

			matches, _ := filepath.Glob(filepath.Join(dir, "*", name+ext))
			for _, match := range matches {
				if p, err := LoadPipelineFile(match); err == nil {
					return p, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("dag: pipeline %q not found in %v", name, l.dirs)
}

// LoadPipelineFile reads and decodes one pipeline file.
func LoadPipelineFile(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParsePipeline(data)
	if err != nil {
		return nil, fmt.Errorf("dag: parsing %s: %w", path, err)
	}
	return p, nil
}

// ParsePipeline decodes a YAML or JSON descriptor.
func ParsePipeline(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	normalizeInputs(p.Nodes)
	p.FlowInput = normalizeMap(p.FlowInput)
	return &p, nil
}

// LoadPipeline loads a pipeline from explicit file paths, returning the
// first one that decodes.
func LoadPipeline(name string, paths ...string) (*Pipeline, error) {
	for _, path := range paths {
		p, err := LoadPipelineFile(path)
		if err == nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("dag: pipeline %q not found in provided paths", name)
}

func normalizeInputs(nodes []NodeSpec) {
	for i := range nodes {
		for j, in := range nodes[i].Input {
			nodes[i].Input[j] = normalize(in)
		}
		nodes[i].ExtraData = normalizeMap(nodes[i].ExtraData)
	}
}

// normalize converts YAML maps with non-string keys into map[string]any so
// inputs look the same as decoded JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalize(v)
	}
	return m
}
