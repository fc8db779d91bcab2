package models

import "strconv"

// RhetoricalRole is the discourse function of a chunk.
type RhetoricalRole string

const (
	RoleArgument         RhetoricalRole = "argument"
	RoleExample          RhetoricalRole = "example"
	RoleBackground       RhetoricalRole = "background"
	RoleConclusion       RhetoricalRole = "conclusion"
	RoleDefinition       RhetoricalRole = "definition"
	RoleMethodology      RhetoricalRole = "methodology"
	RoleInsight          RhetoricalRole = "insight"
	RoleObservation      RhetoricalRole = "observation"
	RoleUnknown          RhetoricalRole = "unknown"
	RoleInsufficientData RhetoricalRole = "insufficient_data"
)

// ContentType is the kind of source document a chunk came from.
type ContentType string

const (
	ContentResearchPaper   ContentType = "research_paper"
	ContentVideoTranscript ContentType = "video_transcript"
	ContentLectureNotes    ContentType = "lecture_notes"
	ContentPersonalNotes   ContentType = "personal_notes"
	ContentBookExcerpt     ContentType = "book_excerpt"
	ContentArticle         ContentType = "article"
	ContentUnknown         ContentType = "unknown"
)

// ConfidenceLabel buckets the composite labeling confidence.
type ConfidenceLabel string

const (
	ConfidenceHigh   ConfidenceLabel = "high"
	ConfidenceMedium ConfidenceLabel = "medium"
	ConfidenceLow    ConfidenceLabel = "low"
)

// TaskMode selects the assistance template used at query time.
type TaskMode string

const (
	ModeStart          TaskMode = "START"
	ModeContinue       TaskMode = "CONTINUE"
	ModeReframe        TaskMode = "REFRAME"
	ModeStuckDiagnosis TaskMode = "STUCK_DIAGNOSIS"
	ModeOutline        TaskMode = "OUTLINE"
)

// TaskModes lists every defined mode in declaration order.
var TaskModes = []TaskMode{ModeStart, ModeContinue, ModeReframe, ModeStuckDiagnosis, ModeOutline}

// ParseTaskMode maps a mode string to a TaskMode.
func ParseTaskMode(s string) (TaskMode, bool) {
	for _, m := range TaskModes {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// Chunk is a contiguous token span of a source document. Chunks are created once
// at ingestion and immutable afterwards.
type Chunk struct {
	Content        string
	ChunkIndex     int
	PageNumber     int    // 0 when the source has no pages
	Timestamp      string // set for time-coded sources, empty otherwise
	SourceFilename string
	ContentType    ContentType
}

// Label is the classification metadata attached 1:1 to a chunk.
type Label struct {
	RhetoricalRole  RhetoricalRole
	TopicTags       []string // nil when no tags were found, max 3 entries
	TokenCount      int
	ConfidenceLabel ConfidenceLabel
	CoverageScore   int // 0-100
	IsAutoLabeled   bool
	HumanVerified   bool
}

// RetrievalResult is one ranked match from a similarity query. Ephemeral,
// never persisted.
type RetrievalResult struct {
	ChunkID         string
	Content         string
	SourceFilename  string
	PageNumber      int
	Timestamp       string
	ContentType     ContentType
	RhetoricalRole  RhetoricalRole
	SimilarityScore float32
}

// Location renders the citation location for a result: page for paged sources,
// timestamp for time-coded ones.
func (r RetrievalResult) Location() string {
	if r.PageNumber > 0 {
		return "page " + strconv.Itoa(r.PageNumber)
	}
	if r.Timestamp != "" {
		return "timestamp " + r.Timestamp
	}
	return "unknown location"
}

// PromptComponents is the ordered set of text blocks assembled into the final
// generation prompt.
type PromptComponents struct {
	SystemRules      string
	IdentityScope    string
	TaskMode         string
	RetrievedContext string
	UserInput        string
	OutputFormat     string
	StyleAdaptation  string // optional
}

// SourceCitation is returned to the caller alongside generated guidance.
type SourceCitation struct {
	Source          string
	PageNumber      int
	Timestamp       string
	ContentType     ContentType
	RhetoricalRole  RhetoricalRole
	SimilarityScore float32
	ContentPreview  string
}
