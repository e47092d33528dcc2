// Package storetest provides an in-memory store.Store with enough PostgREST
// semantics for workflow tests: eq/ilike filters, single-row reads, ordering,
// conflict-merging upserts, and embedded-resource projection.
package storetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/savesage/spices-api/internal/store"
)

// Store is an in-memory implementation of store.Store. Rows are held as
// generic maps, the same shape they have on the wire.
type Store struct {
	mu     sync.Mutex
	tables map[string][]map[string]any
	links  map[string]string
	seq    int

	// Fail, when set, is consulted before every operation and lets tests
	// inject an upstream failure for a specific op ("select", "insert",
	// "update", "delete", "upsert") and entity.
	Fail func(op, entity string) error
}

var _ store.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		tables: make(map[string][]map[string]any),
		links:  make(map[string]string),
	}
}

// LinkForeign registers a non-conventional foreign key for embedded-resource
// resolution: rows of parent join embed through the parent column fk instead
// of the default "<singular embed>_id". Example: ("reviews", "profiles",
// "user_id").
func (s *Store) LinkForeign(parent, embed, fk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[parent+"."+embed] = fk
}

// Seed inserts rows into a table, assigning ids where missing. Rows may be
// structs or maps; they are normalized through JSON.
func (s *Store) Seed(table string, rows ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.append(table, toRow(r))
	}
}

// Rows returns a deep copy of a table's rows for assertions.
func (s *Store) Rows(table string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.tables[table]))
	for i, r := range s.tables[table] {
		out[i] = toRow(r)
	}
	return out
}

func (s *Store) Select(ctx context.Context, entity string, dest any, opts store.SelectOpts) error {
	if err := s.fail("select", entity); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.match(entity, opts.Filters)
	if opts.Order != "" {
		sortRows(matched, opts.Order)
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	cols := parseColumns(opts.Columns)
	projected := make([]map[string]any, len(matched))
	for i, row := range matched {
		projected[i] = s.project(entity, row, cols)
	}

	if opts.Single {
		if len(projected) == 0 {
			return store.ErrNoRows
		}
		return decodeInto(projected[0], dest)
	}
	return decodeInto(projected, dest)
}

func (s *Store) Insert(ctx context.Context, entity string, record any, dest any) error {
	if err := s.fail("insert", entity); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := toRows(record)
	for _, r := range rows {
		s.append(entity, r)
	}
	return decodeInto(rows, dest)
}

func (s *Store) Update(ctx context.Context, entity string, patch any, filters store.Filters, dest any) error {
	if err := s.fail("update", entity); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := toRow(patch)
	var updated []map[string]any
	for _, row := range s.tables[entity] {
		if rowMatches(row, filters) {
			for k, v := range p {
				row[k] = v
			}
			updated = append(updated, row)
		}
	}
	return decodeInto(updated, dest)
}

func (s *Store) Delete(ctx context.Context, entity string, filters store.Filters, dest any) error {
	if err := s.fail("delete", entity); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept, removed []map[string]any
	for _, row := range s.tables[entity] {
		if rowMatches(row, filters) {
			removed = append(removed, row)
		} else {
			kept = append(kept, row)
		}
	}
	s.tables[entity] = kept
	return decodeInto(removed, dest)
}

func (s *Store) Upsert(ctx context.Context, entity string, record any, onConflict string, dest any) error {
	if err := s.fail("upsert", entity); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := toRows(record)
	results := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		existing := s.findBy(entity, onConflict, r[onConflict])
		if existing != nil {
			for k, v := range r {
				existing[k] = v
			}
			results = append(results, existing)
			continue
		}
		s.append(entity, r)
		results = append(results, r)
	}
	return decodeInto(results, dest)
}

// --- internals ---

func (s *Store) fail(op, entity string) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op, entity)
}

func (s *Store) append(table string, row map[string]any) {
	s.seq++
	if _, ok := row["id"]; !ok {
		row["id"] = fmt.Sprintf("%s-%d", singular(table), s.seq)
	}
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = time.Unix(1700000000, 0).
			Add(time.Duration(s.seq) * time.Second).UTC().Format(time.RFC3339)
	}
	s.tables[table] = append(s.tables[table], row)
}

func (s *Store) match(table string, filters store.Filters) []map[string]any {
	var out []map[string]any
	for _, row := range s.tables[table] {
		if rowMatches(row, filters) {
			out = append(out, row)
		}
	}
	return out
}

func (s *Store) findBy(table, col string, v any) map[string]any {
	for _, row := range s.tables[table] {
		if fmt.Sprint(row[col]) == fmt.Sprint(v) {
			return row
		}
	}
	return nil
}

func rowMatches(row map[string]any, filters store.Filters) bool {
	for col, pred := range filters {
		if col == "or" {
			if !orMatches(row, pred) {
				return false
			}
			continue
		}
		if !predMatches(row[col], pred) {
			return false
		}
	}
	return true
}

// orMatches evaluates a "(col.op.value,col.op.value)" group.
func orMatches(row map[string]any, group string) bool {
	group = strings.TrimPrefix(group, "(")
	group = strings.TrimSuffix(group, ")")
	for _, clause := range strings.Split(group, ",") {
		col, pred, ok := strings.Cut(clause, ".")
		if !ok {
			continue
		}
		if predMatches(row[col], pred) {
			return true
		}
	}
	return false
}

func predMatches(v any, pred string) bool {
	switch {
	case strings.HasPrefix(pred, "eq."):
		return fmt.Sprint(v) == strings.TrimPrefix(pred, "eq.")
	case strings.HasPrefix(pred, "ilike."):
		term := strings.Trim(strings.TrimPrefix(pred, "ilike."), "%")
		str, _ := v.(string)
		return strings.Contains(strings.ToLower(str), strings.ToLower(term))
	default:
		return false
	}
}

func sortRows(rows []map[string]any, order string) {
	col, dir, _ := strings.Cut(order, ".")
	desc := dir == "desc"
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return lessValue(rows[j][col], rows[i][col])
		}
		return lessValue(rows[i][col], rows[j][col])
	})
}

func lessValue(a, b any) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

// column is one entry of a projection; embedded resources carry nested columns.
type column struct {
	name   string
	nested []column
	embed  bool
}

// parseColumns splits a projection on top-level commas, keeping "tbl(a,b)"
// embeds intact.
func parseColumns(spec string) []column {
	if spec == "" {
		spec = "*"
	}
	var cols []column
	depth, start := 0, 0
	flush := func(part string) {
		part = strings.TrimSpace(part)
		if part == "" {
			return
		}
		if i := strings.IndexByte(part, '('); i > 0 && strings.HasSuffix(part, ")") {
			cols = append(cols, column{
				name:   part[:i],
				nested: parseColumns(part[i+1 : len(part)-1]),
				embed:  true,
			})
			return
		}
		cols = append(cols, column{name: part})
	}
	for i := 0; i < len(spec); i++ {
		switch spec[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				flush(spec[start:i])
				start = i + 1
			}
		}
	}
	flush(spec[start:])
	return cols
}

func (s *Store) project(table string, row map[string]any, cols []column) map[string]any {
	out := make(map[string]any)
	for _, c := range cols {
		switch {
		case c.embed:
			out[c.name] = s.resolveEmbed(table, row, c.name, c.nested)
		case c.name == "*":
			for k, v := range row {
				out[k] = v
			}
		default:
			if v, ok := row[c.name]; ok {
				out[c.name] = v
			}
		}
	}
	return out
}

// resolveEmbed resolves "embed(...)" the way PostgREST does: through a
// foreign key on the parent when one exists (object result, null on a
// dangling reference), otherwise through the reverse key on the embedded
// table (list result).
func (s *Store) resolveEmbed(parentTable string, row map[string]any, embedTable string, cols []column) any {
	fk := s.links[parentTable+"."+embedTable]
	if fk == "" {
		fk = singular(embedTable) + "_id"
	}
	if ref, ok := row[fk]; ok {
		target := s.findBy(embedTable, "id", ref)
		if target == nil {
			return nil
		}
		return s.project(embedTable, target, cols)
	}

	parentFK := singular(parentTable) + "_id"
	children := make([]map[string]any, 0)
	for _, child := range s.tables[embedTable] {
		if fmt.Sprint(child[parentFK]) == fmt.Sprint(row["id"]) {
			children = append(children, s.project(embedTable, child, cols))
		}
	}
	return children
}

func singular(table string) string {
	return strings.TrimSuffix(table, "s")
}

func toRow(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		cp := make(map[string]any, len(m))
		for k, val := range m {
			cp[k] = val
		}
		return cp
	}
	b, err := json.Marshal(v)
	if err != nil {
		panic(errors.Wrap(err, "storetest: marshal row"))
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(errors.Wrap(err, "storetest: row is not an object"))
	}
	return m
}

func toRows(v any) []map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		panic(errors.Wrap(err, "storetest: marshal record"))
	}
	if len(b) > 0 && b[0] == '[' {
		var ms []map[string]any
		if err := json.Unmarshal(b, &ms); err != nil {
			panic(errors.Wrap(err, "storetest: record is not a list of objects"))
		}
		return ms
	}
	return []map[string]any{toRow(v)}
}

func decodeInto(v any, dest any) error {
	if dest == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "storetest: encode result")
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return errors.Wrap(err, "storetest: decode result")
	}
	return nil
}
