package knowledge_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethixguard/internal/knowledge"
)

func responseFor(t *testing.T, keyword string) string {
	t.Helper()
	for _, e := range knowledge.Default().Entries() {
		if e.Keyword == keyword {
			return e.Response
		}
	}
	t.Fatalf("no entry for %q", keyword)
	return ""
}

func TestRespondExactSubstring(t *testing.T) {
	kb := knowledge.Default()
	assert.Equal(t, responseFor(t, "geac"), kb.Respond("What is GEAC?"))
	assert.Equal(t, responseFor(t, "informed consent"), kb.Respond("How do I document INFORMED-consent? informed consent!"))
}

func TestRespondFirstKeywordInTableOrder(t *testing.T) {
	// Both "gmo" and "geac" occur; "gmo" comes first in the table.
	kb := knowledge.Default()
	assert.Equal(t, responseFor(t, "gmo"), kb.Respond("Does GEAC regulate every GMO?"))
}

func TestRespondFuzzy(t *testing.T) {
	kb := knowledge.Default()
	assert.Equal(t, responseFor(t, "geac"), kb.Respond("jeac"))
	assert.Equal(t, responseFor(t, "rcgm"), kb.Respond("who runs rcmg"))
}

func TestRespondFallback(t *testing.T) {
	kb := knowledge.Default()
	for _, q := range []string{
		"pizza toppings", "", "   ", "?!?",
		// Short or partial words must not ride the prefix bonus onto a
		// longer keyword.
		"research funding", "what food should I eat", "ge", "animal", "informed", "institutional review",
	} {
		got := kb.Respond(q)
		assert.Equal(t, knowledge.FallbackResponse, got, "query %q", q)
		assert.NotEmpty(t, got)
	}
}

func TestRespondFuzzyNeedsComparableLength(t *testing.T) {
	b, err := knowledge.NewBase([]knowledge.Entry{
		{Keyword: "consent", Response: "consent"},
		{Keyword: "gmo", Response: "gmo"},
	})
	require.NoError(t, err)
	assert.Equal(t, "consent", b.Respond("concent"))
	assert.Equal(t, "gmo", b.Respond("gmp"))
	assert.Equal(t, knowledge.FallbackResponse, b.Respond("conse"))
	assert.Equal(t, knowledge.FallbackResponse, b.Respond("g"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "what is geac", knowledge.Normalize("What is GEAC?"))
	assert.Equal(t, "bsl_2 lab", knowledge.Normalize("BSL_2 lab!!"))
	assert.Equal(t, "3rs  principle", knowledge.Normalize("3Rs — principle"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, knowledge.Similarity("geac", "geac"))
	assert.Equal(t, 0.0, knowledge.Similarity("pizza", "rcgm"))
	assert.Equal(t, 0.0, knowledge.Similarity("", "gmo"))

	sub := knowledge.Similarity("jeac", "geac")
	assert.InDelta(t, 0.8333, sub, 0.001)
	assert.GreaterOrEqual(t, sub, knowledge.SimilarityThreshold)

	// One transposition keeps the shared prefix bonus.
	assert.GreaterOrEqual(t, knowledge.Similarity("rcmg", "rcgm"), knowledge.SimilarityThreshold)

	// Symmetric.
	assert.InDelta(t, knowledge.Similarity("consent", "concent"), knowledge.Similarity("concent", "consent"), 1e-9)

	assert.Less(t, knowledge.Similarity("toppings", "containment level"), knowledge.SimilarityThreshold)
}

func TestNewBaseValidates(t *testing.T) {
	_, err := knowledge.NewBase([]knowledge.Entry{{Keyword: "  ?? ", Response: "x"}})
	assert.Error(t, err)
	_, err = knowledge.NewBase([]knowledge.Entry{{Keyword: "bsl", Response: " "}})
	assert.Error(t, err)

	b, err := knowledge.NewBase([]knowledge.Entry{{Keyword: "Biosafety  Level!", Response: "levels"}})
	require.NoError(t, err)
	assert.Equal(t, "biosafety level", b.Entries()[0].Keyword)
	assert.Equal(t, "levels", b.Respond("what is a biosafety level"))
}

func TestLoadBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	doc := `
- keyword: ibsc
  response: Institutional Biosafety Committee.
- keyword: iec
  response: Institutional Ethics Committee.
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	b, err := knowledge.LoadBase(path)
	require.NoError(t, err)
	require.Len(t, b.Entries(), 2)
	assert.Equal(t, "Institutional Ethics Committee.", b.Respond("Who is the IEC?"))
	assert.Equal(t, knowledge.FallbackResponse, b.Respond("geac"))

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("[]\n"), 0o644))
	_, err = knowledge.LoadBase(empty)
	assert.Error(t, err)

	_, err = knowledge.LoadBase(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRespondConcurrent(t *testing.T) {
	kb := knowledge.Default()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if !strings.Contains(kb.Respond("jeac"), "GEAC") {
					t.Error("unexpected response")
				}
			}
		}()
	}
	wg.Wait()
}
