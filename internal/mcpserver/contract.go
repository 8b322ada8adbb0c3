package mcpserver

// RecordFormatContract describes the canonical quote folder layout
// that LLM consumers should understand before adding records.
const RecordFormatContract = `# QuoteVault Record Format Contract

A quote library is a tree of folders. Every quote folder contains:

- ` + "`0.json`" + ` — the header shard: ` + "`" + `{"total":N,"chunk_size":100}` + "`" + `.
  It carries aggregate metadata only, never records.
- ` + "`1.json`" + `, ` + "`2.json`" + `, … — data shards: bare JSON arrays of
  records, in order. Every shard except the last holds exactly
  ` + "`chunk_size`" + ` records; the last holds between 0 and
  ` + "`chunk_size`" + `.

## Records

A record is a JSON array of short strings, in order:

1. the quote text (required)
2. the author (optional)
3. the source work — book, film, song (optional)

Trailing empty fields are trimmed, so ` + "`" + `["text","author"]` + "`" + ` and
` + "`" + `["text","author",""]` + "`" + ` are the same record.

## Rules

1. Never edit shard files by hand through other tools; use the
   add_quote tool, which appends and then rewrites the folder so the
   invariants above keep holding.
2. Quote text should be normalized: no non-breaking spaces, plain
   apostrophes, plain double quotes instead of guillemets. The engine
   normalizes on validation, but clean input avoids warnings.
3. The folder named by add_quote must already exist in the library.
`
