package plansfeatures

import (
	"context"
	"errors"
	"os"
	"strings"
)

// Resolver implementa ports/capabilities.Resolver contra plans-features.
// Hoy gatea el historial extendido de tomas (history:extended).
type Resolver struct {
	client   *Client
	allowAll bool
}

// NewResolver crea un resolver.
// Si ALLOW_ALL_CAPABILITIES=true (env), todo devuelve true (modo dev / fallback).
func NewResolver(client *Client) *Resolver {
	allowAll := strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_ALL_CAPABILITIES")), "true")
	return &Resolver{
		client:   client,
		allowAll: allowAll,
	}
}

// Has responde si userID tiene una capability.
// Si allowAll está activo, devuelve true sin llamar a upstream.
func (r *Resolver) Has(ctx context.Context, userID, capability string) (bool, error) {
	capability = strings.TrimSpace(capability)
	if capability == "" {
		return false, errors.New("capability required")
	}

	if r.allowAll {
		return true, nil
	}

	if r == nil || r.client == nil || !r.client.IsConfigured() {
		// Preferimos fallar explícito en vez de "permitir" sin control.
		return false, ErrPlansNotConfigured
	}

	resp, err := r.client.GetCapabilities(ctx, userID)
	if err != nil {
		return false, err
	}

	return resp.Capabilities[capability], nil
}
