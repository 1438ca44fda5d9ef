// Package registry resolves the active competition and the dataset revision
// a run should evaluate against.
package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Competition identifies one competition and the dataset namespace it
// evaluates submissions against.
type Competition struct {
	ID               string `json:"id"`
	DatasetNamespace string `json:"dataset_namespace"`
}

// Default competition used when no manifest endpoint is configured.
const (
	DefaultCompetitionID    = "season-1"
	DefaultDatasetNamespace = "arena/eval-data"
)

// manifestSchema is validated against the competitions manifest before any
// field of it is trusted.
const manifestSchema = `{
	"type": "object",
	"required": ["current", "competitions"],
	"properties": {
		"current": {"type": "string", "minLength": 1},
		"competitions": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["id", "dataset_namespace"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"dataset_namespace": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`

// ManifestSource fetches raw bytes from the hub.
type ManifestSource interface {
	FetchBytes(ctx context.Context, path string) ([]byte, error)
}

// RevisionResolver resolves a mutable revision label to an immutable id.
type RevisionResolver interface {
	ResolveRevision(ctx context.Context, namespace, label string) (string, error)
}

// Registry answers "which competition is running and which dataset revision
// should I use". With no manifest path configured it falls back to the
// compiled-in default competition.
type Registry struct {
	source       ManifestSource
	resolver     RevisionResolver
	manifestPath string
}

// New creates a registry. manifestPath may be empty, in which case Current
// returns the default competition without any network traffic.
func New(source ManifestSource, resolver RevisionResolver, manifestPath string) *Registry {
	return &Registry{source: source, resolver: resolver, manifestPath: manifestPath}
}

// Default returns the compiled-in competition.
func Default() Competition {
	return Competition{ID: DefaultCompetitionID, DatasetNamespace: DefaultDatasetNamespace}
}

type manifest struct {
	Current      string        `json:"current"`
	Competitions []Competition `json:"competitions"`
}

// Current returns the active competition. The manifest is schema-validated
// before use so that a malformed registry response fails loudly here rather
// than as a confusing downstream error.
func (r *Registry) Current(ctx context.Context) (Competition, error) {
	if r.manifestPath == "" || r.source == nil {
		return Default(), nil
	}

	body, err := r.source.FetchBytes(ctx, r.manifestPath)
	if err != nil {
		return Competition{}, fmt.Errorf("failed to fetch competitions manifest: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(manifestSchema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return Competition{}, &ManifestError{Message: "manifest is not valid JSON", Cause: err}
	}
	if !result.Valid() {
		merr := &ManifestError{Message: "manifest failed schema validation"}
		for _, desc := range result.Errors() {
			merr.Violations = append(merr.Violations, desc.String())
		}
		return Competition{}, merr
	}

	var m manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return Competition{}, &ManifestError{Message: "failed to decode manifest", Cause: err}
	}

	for _, comp := range m.Competitions {
		if comp.ID == m.Current {
			return comp, nil
		}
	}
	return Competition{}, &ManifestError{Message: fmt.Sprintf("current competition %q not in manifest", m.Current)}
}

// ResolveRevision resolves a dataset revision label via the hub.
func (r *Registry) ResolveRevision(ctx context.Context, namespace, label string) (string, error) {
	if r.resolver == nil {
		return "", &ManifestError{Message: "no revision resolver configured"}
	}
	return r.resolver.ResolveRevision(ctx, namespace, label)
}
