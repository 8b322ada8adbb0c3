// Package quotes implements the folder-consistency engine: sharded
// JSON storage of quote records with enumeration, aggregation,
// validation, atomic rewrite, and append.
//
// A quote folder holds data shards named 1.json, 2.json, … plus a
// header shard 0.json carrying the aggregate record count. Every data
// shard except the last holds exactly the chunk size; the header after
// a rewrite is {"total":N,"chunk_size":C} with no records of its own.
// Legacy layouts (object-wrapped shards, headers with inline records)
// are accepted on read and surfaced as findings by Check.
package quotes

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/avigne/quotevault/internal/apperr"
	"github.com/avigne/quotevault/internal/models"
	"github.com/avigne/quotevault/internal/storage"
)

// DefaultChunkSize is the maximum number of records per full shard.
const DefaultChunkSize = 100

// stagingDir is the transient subdirectory used while rewriting a
// folder. Files found in it during enumeration are debris from a
// rewrite that never completed and are deleted.
const stagingDir = "new"

// Folder is the consistency engine bound to one quote folder. It holds
// no record data between operations; every operation re-reads from
// disk.
type Folder struct {
	store storage.Provider
	dir   string // root-relative folder path
	chunk int    // records per full shard
}

// New binds a Folder to dir (relative to the provider root). A chunk
// size below 1 falls back to DefaultChunkSize.
func New(store storage.Provider, dir string, chunk int) *Folder {
	if chunk < 1 {
		chunk = DefaultChunkSize
	}
	return &Folder{store: store, dir: path.Clean(dir), chunk: chunk}
}

// Dir returns the root-relative folder path.
func (f *Folder) Dir() string { return f.dir }

// ChunkSize returns the maximum number of records per full shard.
func (f *Folder) ChunkSize() int { return f.chunk }

// ParseShardName parses a shard file name of the form <N>.json.
// It reports the numeric index and whether the name is well formed;
// index 0 (the header) is a valid parse, distinct from a malformed
// name.
func ParseShardName(name string) (int, bool) {
	base, found := strings.CutSuffix(name, ".json")
	if !found || base == "" {
		return 0, false
	}
	for _, r := range base {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(base)
	if err != nil {
		return 0, false
	}
	return n, true
}

// shardNumber is the strict variant used where a malformed or
// reserved name is a hard error (e.g. when Add derives the next
// shard index).
func shardNumber(name string) (int, error) {
	n, ok := ParseShardName(name)
	if !ok {
		return 0, fmt.Errorf("quotes: malformed shard file name %q", name)
	}
	if n == 0 {
		return 0, fmt.Errorf("quotes: shard file name %q uses the reserved header index", name)
	}
	return n, nil
}

func shardName(n int) string {
	return strconv.Itoa(n) + ".json"
}

// Files enumerates the folder's data shard files, ordered ascending by
// numeric index. The header shard is excluded. Files whose name does
// not parse sort to the front and are included with a stray-file
// finding rather than dropped. Debris inside the staging subdirectory
// is deleted on sight.
func (f *Folder) Files() ([]string, []Finding, error) {
	entries, err := f.store.ReadDir(f.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("quotes: %s: %w", f.dir, apperr.ErrFolderMissing)
		}
		return nil, nil, fmt.Errorf("quotes: list %s: %w", f.dir, err)
	}

	var names []string
	var findings []Finding
	for _, e := range entries {
		if e.IsDir() {
			if e.Name() == stagingDir {
				if err := f.clearStaging(); err != nil {
					return nil, nil, err
				}
			}
			continue
		}
		n, ok := ParseShardName(e.Name())
		switch {
		case ok && n == 0:
			// Header shard, validated separately.
		case ok:
			names = append(names, e.Name())
		default:
			findings = append(findings, Finding{
				Kind:   KindStrayFile,
				File:   path.Join(f.dir, e.Name()),
				Detail: "invalid shard file name",
			})
			names = append(names, e.Name())
		}
	}

	sort.SliceStable(names, func(i, j int) bool {
		ki, kj := sortKey(names[i]), sortKey(names[j])
		if ki != kj {
			return ki < kj
		}
		return names[i] < names[j]
	})
	return names, findings, nil
}

// sortKey orders shards by index, unparseable names first.
func sortKey(name string) int {
	n, ok := ParseShardName(name)
	if !ok {
		return -1
	}
	return n
}

// clearStaging deletes leftover files inside the staging subdirectory
// without removing the directory itself (a rewrite in progress owns it).
func (f *Folder) clearStaging() error {
	staging := path.Join(f.dir, stagingDir)
	entries, err := f.store.ReadDir(staging)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("quotes: list staging: %w", err)
	}
	for _, e := range entries {
		if err := f.store.RemoveAll(path.Join(staging, e.Name())); err != nil {
			return fmt.Errorf("quotes: clear staging: %w", err)
		}
	}
	return nil
}

// readShard decodes the named file within the folder. A missing file
// decodes to an empty object payload.
func (f *Folder) readShard(name string) (payload, error) {
	data, err := f.store.Read(path.Join(f.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return emptyPayload(), nil
		}
		return payload{}, fmt.Errorf("quotes: read %s: %w", path.Join(f.dir, name), err)
	}
	return decodePayload(path.Join(f.dir, name), data)
}

func (f *Folder) writeItems(name string, items []models.Quote) error {
	data, err := encodeItems(items)
	if err != nil {
		return err
	}
	return f.store.Write(path.Join(f.dir, name), data)
}

// inlineItems reports whether a header payload carries record items of
// its own: either an explicit items key or a bare-array payload.
func inlineItems(p payload) bool {
	return p.hasItems || !p.object
}

// Total sums the record counts of the given shard files plus any
// records a legacy header carries inline.
func (f *Folder) Total(files []string) (int, error) {
	total := 0
	hdr, err := f.readShard(storage.HeaderFile)
	if err != nil {
		return 0, err
	}
	if inlineItems(hdr) {
		total += len(hdr.Items)
	}
	for _, name := range files {
		p, err := f.readShard(name)
		if err != nil {
			return 0, err
		}
		total += len(p.Items)
	}
	return total, nil
}

// Check validates the folder and returns its findings. A folder that
// does not exist yields no findings. Findings are advisory: data
// problems never abort the pass, only I/O or type errors do.
func (f *Folder) Check() ([]Finding, error) {
	if !f.exists() {
		return nil, nil
	}

	files, findings, err := f.Files()
	if err != nil {
		return nil, err
	}
	total, err := f.Total(files)
	if err != nil {
		return nil, err
	}

	headerPath := path.Join(f.dir, storage.HeaderFile)
	hdr, err := f.readShard(storage.HeaderFile)
	if err != nil {
		return nil, err
	}
	if !hdr.object {
		findings = append(findings, Finding{
			Kind:   KindHeaderShape,
			File:   headerPath,
			Detail: "no object structure",
		})
	}
	if hdr.Total != total {
		findings = append(findings, Finding{
			Kind:   KindTotalMismatch,
			File:   headerPath,
			Detail: fmt.Sprintf("stored total %d does not match computed total %d", hdr.Total, total),
		})
	}
	if inlineItems(hdr) {
		findings = append(findings, Finding{
			Kind:   KindHeaderItems,
			File:   headerPath,
			Detail: "items section found in header",
		})
	}

	for i, name := range files {
		more, err := f.checkFile(name, i == len(files)-1)
		if err != nil {
			return nil, err
		}
		findings = append(findings, more...)
	}
	return findings, nil
}

// checkFile validates one data shard: payload shape, fill level, and
// text normalization of every field.
func (f *Folder) checkFile(name string, last bool) ([]Finding, error) {
	p, err := f.readShard(name)
	if err != nil {
		return nil, err
	}
	file := path.Join(f.dir, name)

	var findings []Finding
	if p.object {
		findings = append(findings, Finding{
			Kind:   KindObjectShard,
			File:   file,
			Detail: "object structure in data shard",
		})
		if !p.hasItems {
			findings = append(findings, Finding{
				Kind:   KindMissingItems,
				File:   file,
				Detail: "no items section",
			})
		}
	}

	n := len(p.Items)
	if n > f.chunk || (!last && n < f.chunk) {
		findings = append(findings, Finding{
			Kind:   KindShardSize,
			File:   file,
			Detail: fmt.Sprintf("%d records does not match the chunk size of %d", n, f.chunk),
		})
	}

	for pos, q := range p.Items {
		for _, item := range q {
			if FixItem(item) != item {
				findings = append(findings, Finding{
					Kind:   KindRawText,
					File:   file,
					Detail: fmt.Sprintf("record %d field %q is not normalized", pos, item),
				})
			}
		}
	}
	return findings, nil
}

// Fix re-chunks the folder into a canonical shard layout: data shards
// of exactly the chunk size (except the last), contiguously numbered
// from 1, and a header holding the recomputed total. The complete new
// layout, header included, is staged in a subdirectory before any
// original file is touched; originals are deleted only after every
// staged file has been promoted into place. Record order across shards
// is preserved exactly.
func (f *Folder) Fix() error {
	staging := path.Join(f.dir, stagingDir)
	if err := f.store.MkdirAll(staging); err != nil {
		return fmt.Errorf("quotes: create staging: %w", err)
	}

	files, _, err := f.Files()
	if err != nil {
		return err
	}
	total, err := f.Total(files)
	if err != nil {
		return err
	}

	// A legacy header carrying inline records is drained like a data
	// shard so its records are not lost.
	drain := files
	hdr, err := f.readShard(storage.HeaderFile)
	if err != nil {
		return err
	}
	if inlineItems(hdr) {
		drain = append([]string{storage.HeaderFile}, files...)
	}

	next := 1
	var stack []models.Quote

	// flushChunk peels one chunk off the stack into the next staged
	// shard. Unless final, a chunk is written only while more than a
	// full chunk is queued, so the in-progress tail keeps growing until
	// everything has been drained.
	flushChunk := func(final bool) (bool, error) {
		if len(stack) == 0 || (!final && len(stack) <= f.chunk) {
			return false, nil
		}
		n := min(f.chunk, len(stack))
		data, err := encodeItems(stack[:n])
		if err != nil {
			return false, err
		}
		if err := f.store.Write(path.Join(staging, shardName(next)), data); err != nil {
			return false, fmt.Errorf("quotes: stage shard: %w", err)
		}
		stack = stack[n:]
		next++
		return true, nil
	}

	for _, name := range drain {
		p, err := f.readShard(name)
		if err != nil {
			return err
		}
		stack = append(stack, p.Items...)
		if _, err := flushChunk(false); err != nil {
			return err
		}
	}

	headerData, err := encodeHeader(total, f.chunk)
	if err != nil {
		return err
	}
	if err := f.store.Write(path.Join(staging, storage.HeaderFile), headerData); err != nil {
		return fmt.Errorf("quotes: stage header: %w", err)
	}

	for {
		more, err := flushChunk(false)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	if _, err := flushChunk(true); err != nil {
		return err
	}

	// Promote the staged set, replacing old files by name, then drop
	// originals the new layout no longer covers.
	staged, err := f.store.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("quotes: list staged: %w", err)
	}
	promoted := make(map[string]struct{}, len(staged))
	for _, e := range staged {
		if err := f.store.Rename(path.Join(staging, e.Name()), path.Join(f.dir, e.Name())); err != nil {
			return fmt.Errorf("quotes: promote %s: %w", e.Name(), err)
		}
		promoted[e.Name()] = struct{}{}
	}
	for _, name := range drain {
		if _, ok := promoted[name]; ok {
			continue
		}
		if err := f.store.Remove(path.Join(f.dir, name)); err != nil {
			return fmt.Errorf("quotes: remove stale shard: %w", err)
		}
	}
	if err := f.store.Remove(staging); err != nil {
		return fmt.Errorf("quotes: remove staging: %w", err)
	}
	return nil
}

// Add appends one record to the folder's last shard, rolling over to a
// fresh shard when the last one is full, then rewrites the folder to
// restore every invariant. The folder directory must already exist;
// an empty folder gets its first data shard (and, through the rewrite,
// its header).
func (f *Folder) Add(q models.Quote) error {
	files, _, err := f.Files()
	if err != nil {
		return err
	}

	target := shardName(1)
	if len(files) > 0 {
		last := files[len(files)-1]
		n, err := shardNumber(last)
		if err != nil {
			return err
		}
		p, err := f.readShard(last)
		if err != nil {
			return err
		}
		if len(p.Items) >= f.chunk {
			target = shardName(n + 1)
		} else {
			target = last
		}
	}

	p, err := f.readShard(target)
	if err != nil {
		return err
	}
	p.Items = append(p.Items, q)
	if err := f.writeItems(target, p.Items); err != nil {
		return err
	}

	// The folder is transiently non-canonical here (stale header
	// total, possibly an over-full shard). Check is run for its read
	// path only; its findings are discarded and Fix restores every
	// invariant.
	if _, err := f.Check(); err != nil {
		return err
	}
	return f.Fix()
}

func (f *Folder) exists() bool {
	info, err := f.store.Stat(f.dir)
	return err == nil && info.IsDir()
}
