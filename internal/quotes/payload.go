package quotes

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/avigne/quotevault/internal/models"
)

// payload is the normalized content of one shard file. The two on-disk
// shapes (bare array of records, object with an items key plus
// metadata) are folded into this form once, at the read boundary, so
// the engine never branches on the raw JSON shape again.
type payload struct {
	Items     []models.Quote
	Total     int
	ChunkSize int
	object    bool // decoded from an object wrapper (or a missing file)
	hasItems  bool // the object carried an explicit items key
	hasTotal  bool
}

// emptyPayload is what a missing file decodes to: an empty object.
func emptyPayload() payload {
	return payload{object: true}
}

// decodePayload parses raw shard bytes. A payload that is neither a
// JSON object nor a JSON array is a hard error.
func decodePayload(name string, data []byte) (payload, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return payload{}, fmt.Errorf("quotes: empty payload in %s", name)
	}
	switch trimmed[0] {
	case '[':
		var items []models.Quote
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return payload{}, fmt.Errorf("quotes: decode %s: %w", name, err)
		}
		return payload{Items: items}, nil
	case '{':
		var obj struct {
			Items     *[]models.Quote `json:"items"`
			Total     *int            `json:"total"`
			ChunkSize int             `json:"chunk_size"`
			End       bool            `json:"end"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return payload{}, fmt.Errorf("quotes: decode %s: %w", name, err)
		}
		p := payload{object: true, ChunkSize: obj.ChunkSize}
		if obj.Items != nil {
			p.Items = *obj.Items
			p.hasItems = true
		}
		if obj.Total != nil {
			p.Total = *obj.Total
			p.hasTotal = true
		}
		return p, nil
	default:
		return payload{}, fmt.Errorf("quotes: payload in %s is neither object nor array", name)
	}
}

// DecodeItems returns the records held by a shard payload, accepting
// both the bare-array and the legacy object-wrapped forms.
func DecodeItems(data []byte) ([]models.Quote, error) {
	p, err := decodePayload("shard", data)
	if err != nil {
		return nil, err
	}
	return p.Items, nil
}

// header is the canonical index-0 shard payload.
type header struct {
	Total     int `json:"total"`
	ChunkSize int `json:"chunk_size"`
}

// encodeJSON writes v compactly: no extra whitespace, no HTML escaping,
// non-ASCII characters emitted literally.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("quotes: encode: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func encodeItems(items []models.Quote) ([]byte, error) {
	if items == nil {
		items = []models.Quote{}
	}
	return encodeJSON(items)
}

func encodeHeader(total, chunkSize int) ([]byte, error) {
	return encodeJSON(header{Total: total, ChunkSize: chunkSize})
}
