/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SearchQuery describes a block search.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Types restricts the block types; DocumentID restricts to one document.
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type SearchQuery struct {
	Text       string
	Types      []string
	DocumentID string
	Limit      int
	Offset     int
}

// SearchResult is one matching block. Snippet marks hits with [ ] when Text
// was given.
type SearchResult struct {
	DocumentID string
	Position   int
	Type       string
	Text       string
	Snippet    string
}

// SearchBlocks runs a full-text search over stored document blocks. An empty
// Text lists blocks matching the filters.
func (s *Store) SearchBlocks(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	if strings.TrimSpace(q.Text) != "" {
		sb.WriteString("SELECT b.document_id, b.position, b.type, b.text, snippet(fts_blocks, 0, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_blocks JOIN blocks b ON fts_blocks.rowid = b.block_id\n")
		sb.WriteString("WHERE fts_blocks MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT b.document_id, b.position, b.type, b.text, ''\n")
		sb.WriteString("FROM blocks b\nWHERE 1=1\n")
	}
	if len(q.Types) > 0 {
		sb.WriteString(" AND b.type IN (" + placeholders(len(q.Types)) + ")\n")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	if q.DocumentID != "" {
		sb.WriteString(" AND b.document_id = ?\n")
		args = append(args, q.DocumentID)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY b.document_id, b.position\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		var sn sql.NullString
		if err := rows.Scan(&r.DocumentID, &r.Position, &r.Type, &r.Text, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Snippet = sn.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	return b.String()
}
