// Package render defines the document-rendering and content-hashing
// collaborators the lifecycle consumes. The actual template substitution and
// PDF generation live outside this service; the defaults here exist so the
// binary runs end to end.
package render

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
)

// Renderer produces the canonical rendered document for an ordinance and
// returns an opaque reference to it.
type Renderer interface {
	RenderDocument(ctx context.Context, ordinanceID string) (contentRef string, err error)
}

// Hasher computes the integrity digest over the canonical content behind a
// content reference.
type Hasher interface {
	ComputeHash(contentRef string) string
}

// SHA256Hasher is the persisted hashing convention: SHA-256 over the
// canonical bytes, hex-encoded, uppercase.
type SHA256Hasher struct{}

// ComputeHash implements Hasher.
func (SHA256Hasher) ComputeHash(contentRef string) string {
	sum := sha256.Sum256([]byte(contentRef))
	return strings.ToUpper(fmt.Sprintf("%x", sum))
}

// PassthroughRenderer treats the ordinance's stored content reference as the
// rendered document. It stands in for the external rendering subsystem.
type PassthroughRenderer struct {
	// Resolve maps an ordinance ID to its current content reference.
	Resolve func(ctx context.Context, ordinanceID string) (string, error)
}

// RenderDocument implements Renderer.
func (r PassthroughRenderer) RenderDocument(ctx context.Context, ordinanceID string) (string, error) {
	if r.Resolve == nil {
		return "", fmt.Errorf("renderer is not configured")
	}
	contentRef, err := r.Resolve(ctx, ordinanceID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(contentRef) == "" {
		return "", fmt.Errorf("ordinance %s has no content to render", ordinanceID)
	}
	return contentRef, nil
}
