// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers holds the gin handlers for the question endpoint,
// health checking, and cache administration.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/octagonops/fightbot/pkg/validation"
	"github.com/octagonops/fightbot/services/fightbot/cache"
	"github.com/octagonops/fightbot/services/fightbot/format"
	"github.com/octagonops/fightbot/services/fightbot/intent"
	"github.com/octagonops/fightbot/services/fightbot/store"
)

// extremalLimit caps how many fighters an extremal answer lists.
const extremalLimit = 5

// DataStore is the store surface the handlers consume.
type DataStore interface {
	GetFighter(ctx context.Context, id string) (store.Fighter, error)
	GetDivision(ctx context.Context, id string) (store.Division, error)
	Rankings(ctx context.Context) ([]store.Division, error)
	FightersByAttribute(ctx context.Context, attr store.Attribute, max int,
		findMax bool, divisionFilter string) ([]store.Fighter, error)
	InvalidateAll(ctx context.Context)
}

// MessageClassifier maps a sanitized message to a typed intent.
type MessageClassifier interface {
	Classify(ctx context.Context, text string) intent.Result
}

// Handler serves the fightbot HTTP surface.
type Handler struct {
	store      DataStore
	classifier MessageClassifier
	dist       cache.Distributed // nil when redis is not configured
	logger     *slog.Logger
}

// New builds a Handler. dist may be nil.
func New(ds DataStore, cl MessageClassifier, dist cache.Distributed, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:      ds,
		classifier: cl,
		dist:       dist,
		logger:     logger.With("component", "handlers"),
	}
}

type askRequest struct {
	Message string `json:"message"`
}

type askResponse struct {
	Answer    string `json:"answer"`
	Intent    string `json:"intent"`
	RequestID string `json:"request_id"`
}

// Ask answers a free-text question. Unresolvable lookups return a
// specific "couldn't find" answer with HTTP 200; only an unusable
// message is a client error.
func (h *Handler) Ask(c *gin.Context) {
	requestID := uuid.NewString()

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "invalid_body",
			"request_id": requestID,
		})
		return
	}

	message, err := validation.SanitizeMessage(req.Message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "invalid_message",
			"request_id": requestID,
		})
		return
	}

	result := h.classifier.Classify(c.Request.Context(), message)
	answer := h.answer(c.Request.Context(), result)

	h.logger.Info("answered question",
		"request_id", requestID, "intent", result.Type)
	c.JSON(http.StatusOK, askResponse{
		Answer:    answer,
		Intent:    string(result.Type),
		RequestID: requestID,
	})
}

// answer dispatches a classified intent to the store and renders the
// reply. Store misses render as not-found answers, never as errors.
func (h *Handler) answer(ctx context.Context, r intent.Result) string {
	switch r.Type {
	case intent.TypeFighterInfo:
		f, err := h.store.GetFighter(ctx, r.FighterID)
		if err != nil {
			return format.FighterNotFound()
		}
		return format.FighterCard(f)

	case intent.TypeFighterAttribute:
		f, err := h.store.GetFighter(ctx, r.FighterID)
		if err != nil {
			return format.FighterNotFound()
		}
		return format.AttributeAnswer(f, r.Attribute)

	case intent.TypeFighterComparison:
		a, errA := h.store.GetFighter(ctx, r.FighterID)
		b, errB := h.store.GetFighter(ctx, r.FighterID2)
		if errA != nil || errB != nil {
			return format.FighterNotFound()
		}
		return format.Comparison(a, b, r.Attribute)

	case intent.TypePhysicalComparison:
		findMax := r.Comparison == intent.CompareMax
		fighters, err := h.store.FightersByAttribute(ctx, r.Attribute,
			extremalLimit, findMax, r.DivisionID)
		if err != nil {
			return format.FighterNotFound()
		}
		return format.Extremal(fighters, r.Attribute, findMax)

	case intent.TypeDivisionChampion:
		d, err := h.store.GetDivision(ctx, r.DivisionID)
		if err != nil {
			return format.DivisionNotFound()
		}
		return format.ChampionLine(d)

	case intent.TypeDivisionRankings:
		d, err := h.store.GetDivision(ctx, r.DivisionID)
		if err != nil {
			return format.DivisionNotFound()
		}
		return format.RankingsList(d)

	case intent.TypeDivisionInfo:
		d, err := h.store.GetDivision(ctx, r.DivisionID)
		if err != nil {
			return format.DivisionNotFound()
		}
		return format.DivisionInfo(d)

	case intent.TypeAllChampions:
		divs, err := h.store.Rankings(ctx)
		if err != nil {
			return format.AllChampions(nil)
		}
		return format.AllChampions(divs)

	case intent.TypeAllRankings:
		divs, err := h.store.Rankings(ctx)
		if err != nil {
			return format.AllRankings(nil)
		}
		return format.AllRankings(divs)

	case intent.TypeGeneralMMA:
		return format.GeneralMMA()

	default:
		return format.UnknownHelp()
	}
}

// Health reports liveness plus the state of the optional redis tier.
func (h *Handler) Health(c *gin.Context) {
	redis := "disabled"
	if h.dist != nil {
		redis = "unavailable"
		if h.dist.Ping(c.Request.Context()) {
			redis = "ok"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "fightbot",
		"redis":   redis,
	})
}

// FlushCache clears every cache tier.
func (h *Handler) FlushCache(c *gin.Context) {
	h.store.InvalidateAll(c.Request.Context())
	h.logger.Info("caches flushed by admin request")
	c.JSON(http.StatusOK, gin.H{"status": "flushed"})
}
