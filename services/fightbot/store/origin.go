// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"

	"github.com/octagonops/fightbot/services/fightbot/upstream"
)

// OriginClient adapts the upstream fetcher to the store's Origin
// contract, mapping raw payloads into domain types.
type OriginClient struct {
	client *upstream.Client
}

// NewOriginClient wraps an upstream client.
func NewOriginClient(client *upstream.Client) *OriginClient {
	return &OriginClient{client: client}
}

func (o *OriginClient) Fighters(ctx context.Context) (map[string]Fighter, error) {
	raw, err := o.client.Fighters(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Fighter, len(raw))
	for id, p := range raw {
		out[id] = fighterFromPayload(id, p)
	}
	return out, nil
}

func (o *OriginClient) Rankings(ctx context.Context) ([]Division, error) {
	raw, err := o.client.Rankings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Division, 0, len(raw))
	for _, p := range raw {
		out = append(out, divisionFromPayload(p))
	}
	return out, nil
}

func (o *OriginClient) Fighter(ctx context.Context, id string) (Fighter, error) {
	raw, err := o.client.Fighter(ctx, id)
	if err != nil {
		return Fighter{}, err
	}
	return fighterFromPayload(id, raw), nil
}

func (o *OriginClient) Division(ctx context.Context, id string) (Division, error) {
	raw, err := o.client.Division(ctx, id)
	if err != nil {
		return Division{}, err
	}
	return divisionFromPayload(raw), nil
}

var _ Origin = (*OriginClient)(nil)
