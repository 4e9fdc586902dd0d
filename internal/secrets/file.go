package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileConfig configures the file-based secrets provider.
// Development only: a flat JSON object mapping secret keys to values.
type FileConfig struct {
	// Path is the path to the secrets file (JSON format)
	Path string
}

// FileProvider reads secrets from a JSON file. The file is loaded once at
// construction; Reload picks up rotated credentials.
type FileProvider struct {
	path string
	mu   sync.RWMutex
	data map[string]string
}

// NewFileProvider creates a file-based secrets provider. The file must exist
// and parse; a service with a misconfigured secrets path should fail at
// startup, not at first use.
func NewFileProvider(config *FileConfig) (*FileProvider, error) {
	if config == nil || config.Path == "" {
		return nil, fmt.Errorf("file path required")
	}

	p := &FileProvider{
		path: config.Path,
		data: make(map[string]string),
	}
	if err := p.load(); err != nil {
		return nil, fmt.Errorf("load secrets file: %w", err)
	}
	return p, nil
}

func (p *FileProvider) Name() string { return "file" }

func (p *FileProvider) Get(ctx context.Context, key string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	val, ok := p.data[key]
	if !ok {
		return "", fmt.Errorf("secret not found: %s", key)
	}
	return val, nil
}

// Reload re-reads the secrets file.
func (p *FileProvider) Reload() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load()
}

func (p *FileProvider) load() error {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return err
	}
	data := make(map[string]string)
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}
	p.data = data
	return nil
}
