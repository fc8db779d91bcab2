package labelstore

import (
	"testing"

	"cognitive-rag/internal/models"
)

func TestNewChunkLabel(t *testing.T) {
	chunk := models.Chunk{
		ChunkIndex:  4,
		Content:     "Therefore, results suggest caching helps.",
		ContentType: models.ContentResearchPaper,
		PageNumber:  7,
	}
	label := models.Label{
		RhetoricalRole:  models.RoleArgument,
		TopicTags:       []string{"Machine Learning", "NLP"},
		ConfidenceLabel: models.ConfidenceHigh,
		CoverageScore:   80,
		TokenCount:      6,
		IsAutoLabeled:   true,
	}

	row, err := NewChunkLabel("alice", "doc-1", chunk, label)
	if err != nil {
		t.Fatalf("NewChunkLabel: %v", err)
	}

	if row.ChunkID != "alice_doc-1_4" {
		t.Errorf("ChunkID = %q, want alice_doc-1_4", row.ChunkID)
	}
	if row.ID == "" || row.ID == row.ChunkID {
		t.Errorf("row ID must be an independent identifier, got %q", row.ID)
	}
	if row.OwnerID != "alice" || row.DocumentID != "doc-1" || row.ChunkIndex != 4 {
		t.Errorf("identity fields wrong: %+v", row)
	}
	if row.SourceType != string(models.ContentResearchPaper) {
		t.Errorf("SourceType = %q", row.SourceType)
	}
	if row.PageNumber != 7 {
		t.Errorf("PageNumber = %d", row.PageNumber)
	}
	if row.RhetoricalRole != string(models.RoleArgument) {
		t.Errorf("RhetoricalRole = %q", row.RhetoricalRole)
	}
	if row.TopicTags != `["Machine Learning","NLP"]` {
		t.Errorf("TopicTags = %q", row.TopicTags)
	}
	if row.ConfidenceLabel != string(models.ConfidenceHigh) || row.CoverageScore != 80 {
		t.Errorf("scoring fields wrong: %+v", row)
	}
	if !row.IsAutoLabeled || row.HumanVerified {
		t.Errorf("flag fields wrong: auto=%v verified=%v", row.IsAutoLabeled, row.HumanVerified)
	}
}

func TestNewChunkLabel_NoTags(t *testing.T) {
	row, err := NewChunkLabel("alice", "doc-1", models.Chunk{}, models.Label{RhetoricalRole: models.RoleUnknown})
	if err != nil {
		t.Fatalf("NewChunkLabel: %v", err)
	}
	if row.TopicTags != "" {
		t.Errorf("TopicTags = %q, want empty for a tagless label", row.TopicTags)
	}
}

func TestTopicTagList(t *testing.T) {
	testCases := []struct {
		name   string
		stored string
		want   []string
	}{
		{"round trip", `["Machine Learning","NLP"]`, []string{"Machine Learning", "NLP"}},
		{"empty column", "", nil},
		{"corrupt json", "{not json", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			row := &ChunkLabel{TopicTags: tc.stored}
			got := row.TopicTagList()
			if len(got) != len(tc.want) {
				t.Fatalf("TopicTagList() = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("tag %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}
