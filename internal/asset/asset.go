package asset

// Kind represents the type of image asset.
type Kind uint8

const (
	KindFlag Kind = 0
	KindLogo Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindLogo:
		return "logo"
	default:
		return "other"
	}
}

// Asset is a single remote image to download.
type Asset struct {
	ID   string // Output file stem, e.g. "gb" or "red-bull"
	Name string // Human label, e.g. "British"
	URL  string
	Ext  string // Output extension without the dot; empty means sniff from the body
	Kind Kind
}

// Status is the outcome of processing one asset.
type Status uint8

const (
	StatusOK      Status = 0
	StatusFailed  Status = 1
	StatusSkipped Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Result records what happened to one asset.
type Result struct {
	Asset  Asset
	Status Status
	Path   string // Written file, set when Status is StatusOK
	Bytes  int64  // Size of the written file
	Err    error
}

// Skip is a catalog entry that could not be turned into an Asset.
type Skip struct {
	Name   string
	Reason string
}

// Summary aggregates results for a run, in input order.
type Summary struct {
	Results []Result
}

// Add appends a result.
func (s *Summary) Add(r Result) {
	s.Results = append(s.Results, r)
}

// Count returns the number of results with the given status.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// TotalBytes returns the bytes written across successful results.
func (s *Summary) TotalBytes() int64 {
	var total int64
	for _, r := range s.Results {
		if r.Status == StatusOK {
			total += r.Bytes
		}
	}
	return total
}
