package testutil

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"testing"

	"github.com/firefly-engineering/warden-ctl/internal/config"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// WriteFixture copies a fixture into a temp dir and returns its path, for
// loaders that take a file name.
func WriteFixture(t testing.TB, name string) string {
	t.Helper()

	data, err := LoadFixture(name)
	if err != nil {
		t.Fatalf("Failed to load fixture %s: %v", name, err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", name, err)
	}
	return path
}

// LoadCreateRequestFixture parses a create payload fixture.
func LoadCreateRequestFixture(name string) (*config.CreateRequest, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	return config.ParseCreateRequest(bytes.NewReader(data))
}

// ValidCreateRequest returns the valid create payload fixture.
func ValidCreateRequest() (*config.CreateRequest, error) {
	return LoadCreateRequestFixture("valid_create_request.json")
}

// InvalidCreateRequest parses the create payload fixture that is missing
// memory_limit; the returned error is expected.
func InvalidCreateRequest() (*config.CreateRequest, error) {
	return LoadCreateRequestFixture("invalid_create_request.json")
}
