// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// KNOWLEDGE BASES
// =============================================================================

// Indexing statuses reported by the backend. Ready and Failed are
// terminal; everything else means the pipeline is still working.
const (
	IndexStatusPending  = "pending"
	IndexStatusIndexing = "indexing"
	IndexStatusReady    = "ready"
	IndexStatusFailed   = "failed"
)

// ErrIndexingFailed indicates a knowledge base reached the failed status.
var ErrIndexingFailed = errors.New("knowledge base indexing failed")

// KnowledgeBase is one attachable document/link collection.
type KnowledgeBase struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Document is an uploaded file inside a knowledge base.
type Document struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// WebsiteLink is a crawled URL inside a knowledge base.
type WebsiteLink struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

func kbPath(id int) string {
	return "/api/analytics/knowledge-bases/" + strconv.Itoa(id) + "/"
}

// ListKnowledgeBases returns the account's knowledge bases.
func (c *Client) ListKnowledgeBases(ctx context.Context) ([]KnowledgeBase, error) {
	var out []KnowledgeBase
	if err := c.getJSON(ctx, "/api/analytics/knowledge-bases/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateKnowledgeBase creates an empty knowledge base.
func (c *Client) CreateKnowledgeBase(ctx context.Context, name string) (KnowledgeBase, error) {
	var out KnowledgeBase
	err := c.postJSON(ctx, "/api/analytics/knowledge-bases/", map[string]string{"name": name}, &out)
	if err != nil {
		return KnowledgeBase{}, err
	}
	return out, nil
}

// DeleteKnowledgeBase removes a knowledge base and its contents.
func (c *Client) DeleteKnowledgeBase(ctx context.Context, id int) error {
	return c.deleteJSON(ctx, kbPath(id))
}

// ListDocuments returns the files uploaded to a knowledge base.
func (c *Client) ListDocuments(ctx context.Context, id int) ([]Document, error) {
	var out []Document
	if err := c.getJSON(ctx, kbPath(id)+"documents/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListWebsiteLinks returns the URLs attached to a knowledge base.
func (c *Client) ListWebsiteLinks(ctx context.Context, id int) ([]WebsiteLink, error) {
	var out []WebsiteLink
	if err := c.getJSON(ctx, kbPath(id)+"links/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddWebsiteLink queues a URL for crawling and indexing.
func (c *Client) AddWebsiteLink(ctx context.Context, id int, url string) error {
	return c.postJSON(ctx, kbPath(id)+"links/", map[string]string{"url": url}, nil)
}

// IndexingStatus fetches a knowledge base's current pipeline status.
func (c *Client) IndexingStatus(ctx context.Context, id int) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, kbPath(id)+"status/", &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// WaitForIndexing polls the indexing status at a fixed cadence until the
// knowledge base is ready, the pipeline fails, or ctx is cancelled. The
// indexing pipeline offers no push channel, so repeated queries are the
// only way to observe completion.
func (c *Client) WaitForIndexing(ctx context.Context, id int, interval time.Duration) (string, error) {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return "", err
		}
		status, err := c.IndexingStatus(ctx, id)
		if err != nil {
			return "", err
		}
		switch status {
		case IndexStatusReady:
			return status, nil
		case IndexStatusFailed:
			return status, fmt.Errorf("%w (knowledge base %d)", ErrIndexingFailed, id)
		}
	}
}
