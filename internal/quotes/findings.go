package quotes

import "fmt"

// Kind classifies a validation finding.
type Kind string

// Finding kinds emitted by Check and Files.
const (
	KindStrayFile     Kind = "stray-file"     // file name is not a valid shard name
	KindHeaderShape   Kind = "header-shape"   // header payload is not an object
	KindHeaderItems   Kind = "header-items"   // header carries inline records
	KindTotalMismatch Kind = "total-mismatch" // stored total differs from computed
	KindObjectShard   Kind = "object-shard"   // data shard wrapped in an object
	KindMissingItems  Kind = "missing-items"  // object-wrapped shard has no items key
	KindShardSize     Kind = "shard-size"     // shard record count breaks the cap rule
	KindRawText       Kind = "raw-text"       // record field is not normalized
)

// Finding is one advisory validation result. Findings never abort an
// operation; callers decide whether their presence fails a run.
type Finding struct {
	Kind   Kind   `json:"kind"`
	File   string `json:"file,omitempty"` // root-relative file path, empty for folder-level findings
	Detail string `json:"detail"`
}

func (f Finding) String() string {
	if f.File == "" {
		return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", f.Kind, f.File, f.Detail)
}
