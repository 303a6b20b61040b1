/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"fmt"
	"strings"

	"sceneweaver/internal/storage"
)

// SearchBlocks runs a tsvector search over stored blocks and maps rows to
// storage.SearchResult so results compare one to one with the SQLite store.
// Text is taken as plain words; hits in Snippet are marked with [ ].
func (s *PGStore) SearchBlocks(ctx context.Context, q storage.SearchQuery) ([]storage.SearchResult, error) {
	var (
		args []any
		b    strings.Builder
	)
	place := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if strings.TrimSpace(q.Text) != "" {
		p := place(q.Text)
		b.WriteString("SELECT b.document_id::text, b.position, b.block_type, b.text, ")
		b.WriteString("COALESCE(ts_headline('simple', b.text, plainto_tsquery('simple', " + p + "), 'StartSel=[, StopSel=], MaxFragments=1, MaxWords=12'), '') ")
		b.WriteString("FROM blocks b WHERE b.search_vector @@ plainto_tsquery('simple', " + p + ") ")
	} else {
		b.WriteString("SELECT b.document_id::text, b.position, b.block_type, b.text, '' FROM blocks b WHERE TRUE ")
	}
	if len(q.Types) > 0 {
		b.WriteString(" AND b.block_type = ANY (" + place(q.Types) + ") ")
	}
	if q.DocumentID != "" {
		b.WriteString(" AND b.document_id::text = " + place(q.DocumentID) + " ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	b.WriteString(" ORDER BY b.document_id, b.position ")
	b.WriteString(" LIMIT " + place(limit) + " OFFSET " + place(offset))

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search pg query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []storage.SearchResult{}
	for rows.Next() {
		var r storage.SearchResult
		if err := rows.Scan(&r.DocumentID, &r.Position, &r.Type, &r.Text, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
