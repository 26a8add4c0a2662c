package provider

import (
	"context"
	"errors"
)

// Offline never reaches a remote model; every turn takes the local path.
type Offline struct{}

func (Offline) Name() string { return "offline" }

func (Offline) Generate(ctx context.Context, _ Request) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	return Reply{}, unavailable("offline", errors.New("no remote provider configured"))
}
