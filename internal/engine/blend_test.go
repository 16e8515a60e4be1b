package engine

import (
	"testing"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

func cand(id int64, score float64, source domain.Source) domain.Candidate {
	return domain.Candidate{
		BookID:  id,
		Title:   "Book",
		Genre:   "fantasy",
		Score:   score,
		Source:  source,
		Reasons: []string{"similar_genre"},
	}
}

func TestBlendKeepsMaxScoreForDuplicates(t *testing.T) {
	lists := []SourceList{
		{Source: domain.SourceCollaborative, Candidates: []domain.Candidate{
			cand(1, 0.71, domain.SourceCollaborative),
		}},
		{Source: domain.SourceContentBased, Candidates: []domain.Candidate{
			cand(1, 0.42, domain.SourceContentBased),
		}},
	}

	got := Blend(lists, 10)
	if len(got) != 1 {
		t.Fatalf("expected one candidate after dedup, got %d", len(got))
	}
	if got[0].Score != 0.71 {
		t.Errorf("expected surviving score 0.71, got %f", got[0].Score)
	}
	if got[0].Source != domain.SourceCollaborative {
		t.Errorf("expected collaborative to win, got %s", got[0].Source)
	}
}

func TestBlendNoDuplicateIDs(t *testing.T) {
	lists := []SourceList{
		{Source: domain.SourceTrending, Candidates: []domain.Candidate{
			cand(1, 0.5, domain.SourceTrending),
			cand(2, 0.4, domain.SourceTrending),
		}},
		{Source: domain.SourceNewRelease, Candidates: []domain.Candidate{
			cand(2, 0.3, domain.SourceNewRelease),
			cand(3, 0.6, domain.SourceNewRelease),
		}},
	}

	got := Blend(lists, 10)
	seen := make(map[int64]bool)
	for _, c := range got {
		if seen[c.BookID] {
			t.Errorf("duplicate book id %d in output", c.BookID)
		}
		seen[c.BookID] = true
	}
}

func TestBlendSortedAndTruncated(t *testing.T) {
	var cands []domain.Candidate
	for i := int64(1); i <= 20; i++ {
		cands = append(cands, cand(i, float64(i)/100.0, domain.SourceCollaborative))
	}
	lists := []SourceList{{Source: domain.SourceCollaborative, Candidates: cands}}

	got := Blend(lists, 5)
	if len(got) > 5 {
		t.Fatalf("expected at most 5 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("scores not descending at %d: %f > %f", i, got[i].Score, got[i-1].Score)
		}
	}
}

func TestBlendSourceAllocation(t *testing.T) {
	many := func(source domain.Source, base int64, n int) []domain.Candidate {
		var out []domain.Candidate
		for i := 0; i < n; i++ {
			out = append(out, cand(base+int64(i), 0.9, source))
		}
		return out
	}
	lists := []SourceList{
		{Source: domain.SourceCollaborative, Candidates: many(domain.SourceCollaborative, 100, 20)},
		{Source: domain.SourceContentBased, Candidates: many(domain.SourceContentBased, 200, 20)},
		{Source: domain.SourceTrending, Candidates: many(domain.SourceTrending, 300, 20)},
		{Source: domain.SourceNewRelease, Candidates: many(domain.SourceNewRelease, 400, 20)},
	}

	got := Blend(lists, 10)

	counts := make(map[domain.Source]int)
	for _, c := range got {
		counts[c.Source]++
	}
	// One dominant source must not crowd out the others: every source gets
	// its allocation share even though all lists overflow.
	if counts[domain.SourceCollaborative] > 4 {
		t.Errorf("collaborative exceeded its 35%% share: %d", counts[domain.SourceCollaborative])
	}
	if counts[domain.SourceTrending] == 0 || counts[domain.SourceNewRelease] == 0 {
		t.Errorf("minor sources crowded out: %v", counts)
	}
}

func TestBlendStableTieBreak(t *testing.T) {
	lists := []SourceList{
		{Source: domain.SourceCollaborative, Candidates: []domain.Candidate{
			cand(1, 0.5, domain.SourceCollaborative),
		}},
		{Source: domain.SourceTrending, Candidates: []domain.Candidate{
			cand(2, 0.5, domain.SourceTrending),
		}},
	}

	for i := 0; i < 10; i++ {
		got := Blend(lists, 10)
		if len(got) != 2 || got[0].BookID != 1 || got[1].BookID != 2 {
			t.Fatalf("tie-break not stable on run %d: %v", i, got)
		}
	}
}

func TestBlendRoundsScores(t *testing.T) {
	lists := []SourceList{
		{Source: domain.SourceCollaborative, Candidates: []domain.Candidate{
			cand(1, 0.123456, domain.SourceCollaborative),
		}},
	}

	got := Blend(lists, 10)
	if len(got) != 1 || got[0].Score != 0.123 {
		t.Errorf("expected score rounded to 0.123, got %v", got)
	}
}

func TestBlendEmptyInput(t *testing.T) {
	got := Blend([]SourceList{
		{Source: domain.SourceCollaborative},
		{Source: domain.SourceContentBased},
		{Source: domain.SourceTrending},
		{Source: domain.SourceNewRelease},
	}, 10)
	if len(got) != 0 {
		t.Errorf("expected empty output, got %v", got)
	}
}
