// Package mock provides test doubles for localchat interfaces using function
// fields.
package mock

import (
	"context"

	"github.com/fwojciec/localchat"
)

// Interface compliance checks.
var (
	_ localchat.Provider = (*Provider)(nil)
	_ localchat.Checker  = (*Provider)(nil)
)

// Provider is a test double for localchat.Provider and localchat.Checker.
// Set StreamFn before calling Stream. CheckFn is nil-safe and reports the
// model as available when unset.
type Provider struct {
	StreamFn func(ctx context.Context, req localchat.Request) (localchat.Stream, error)
	CheckFn  func(ctx context.Context, model string) error
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req localchat.Request) (localchat.Stream, error) {
	return p.StreamFn(ctx, req)
}

// Check delegates to CheckFn. Returns nil when CheckFn is not set.
func (p *Provider) Check(ctx context.Context, model string) error {
	if p.CheckFn == nil {
		return nil
	}
	return p.CheckFn(ctx, model)
}
