package detector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadClassifier_ClassOrderValidated(t *testing.T) {
	tests := []struct {
		name    string
		classes string
	}{
		{"swapped", "[1, 0]"},
		{"wrong labels", "[0, 2]"},
		{"single class", "[0]"},
		{"three classes", "[0, 1, 2]"},
		{"empty", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, "model: model.bin\nclasses: "+tt.classes+"\n")
			_, err := LoadClassifier(path)
			require.Error(t, err)
			assert.True(t, IsKind(err, ErrConfigLoad), "got %v", err)
		})
	}
}

func TestLoadClassifier_MissingManifest(t *testing.T) {
	_, err := LoadClassifier(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrConfigLoad))
}

func TestLoadClassifier_MalformedManifest(t *testing.T) {
	path := writeManifest(t, "{not yaml")
	_, err := LoadClassifier(path)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrConfigLoad))
}

func TestLoadClassifier_MissingModelFile(t *testing.T) {
	// Valid manifest, but the booster file it points to is absent
	path := writeManifest(t, "model: no-such-model.bin\nclasses: [0, 1]\n")
	_, err := LoadClassifier(path)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrConfigLoad))
}

func TestLoadClassifier_ManifestWithoutModel(t *testing.T) {
	path := writeManifest(t, "classes: [0, 1]\n")
	_, err := LoadClassifier(path)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrConfigLoad))
}

func TestValidateClasses(t *testing.T) {
	assert.NoError(t, validateClasses([]int{0, 1}))
	assert.Error(t, validateClasses([]int{1, 0}))
	assert.Error(t, validateClasses(nil))
}
