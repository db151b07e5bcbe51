package models

// SourceKind identifies where a candidate script was discovered.
type SourceKind string

const (
	SourceExternal SourceKind = "external"
	SourceInline   SourceKind = "inline"
)

// ArtifactKind is the kind segment encoded into archived filenames.
type ArtifactKind string

const (
	ArtifactMain   ArtifactKind = "main"
	ArtifactInline ArtifactKind = "inline"
)

// Kind maps a source kind to the artifact kind used for naming.
func (sk SourceKind) Kind() ArtifactKind {
	if sk == SourceInline {
		return ArtifactInline
	}
	return ArtifactMain
}

// CandidateScript is one discovered script prior to filtering.
// External candidates carry only URL until their bytes are fetched;
// inline candidates carry Body from the start.
type CandidateScript struct {
	SourceKind  SourceKind
	URL         string // locator for external scripts, empty for inline
	PageURL     string // page the script was discovered on
	PageOffset  int    // DOM order index for inline scripts
	CrossOrigin bool
	Body        []byte
}

// RenderedPage is the renderer collaborator's view of one loaded page:
// the final DOM plus the network-loaded script resources in load order.
type RenderedPage struct {
	URL          string // final URL after redirects
	RequestedURL string
	HTML         string
	ScriptURLs   []string
}

// FilterDecision is the outcome of classifying a candidate.
type FilterDecision struct {
	Keep   bool
	Reason string
}

// Skip reasons shared across the pipeline.
const (
	ReasonTooSmall  = "too-small"
	ReasonDuplicate = "duplicate-fingerprint"
)

// ArchiveStatus reports what the archive writer did with a script.
type ArchiveStatus string

const (
	ArchiveWritten ArchiveStatus = "written"
	ArchiveSkipped ArchiveStatus = "skipped"
)

// ArchiveResult describes the outcome of one archive call.
type ArchiveResult struct {
	Status ArchiveStatus
	Path   string // set when Status == ArchiveWritten
	Seq    int    // sequence index within the (domain, mode) scope
	Reason string // set when Status == ArchiveSkipped
}
