package classifier

import (
	"testing"

	"github.com/anshu200710/ai-agent-sub000/pkg/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAllEngineAndBrake(t *testing.T) {
	cat := taxonomy.Default()
	got := ClassifyAll("Engine not starting and brake weak", cat, DefaultMinScore)

	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, "Engine", got[0].Category)
	assert.Equal(t, "Start Problem", got[0].SubCategory)
	assert.Equal(t, "Braking", got[1].Category)
	assert.Equal(t, "Weak Braking", got[1].SubCategory)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	cat := taxonomy.Default()
	text := "hydraulic pipe se oil leak ho raha hai aur battery bhi kharab"
	first := ClassifyAll(text, cat, DefaultMinScore)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ClassifyAll(text, cat, DefaultMinScore))
	}
	one, ok := Classify(text, cat)
	require.True(t, ok)
	again, _ := Classify(text, cat)
	assert.Equal(t, one, again)
}

func TestGeneralSuppressedWhenSpecificMatches(t *testing.T) {
	cat := taxonomy.Default()

	got := ClassifyAll("machine mein problem hai, gear nahi lag raha", cat, DefaultMinScore)
	for _, c := range got {
		assert.NotEqual(t, "General", c.Category)
	}

	got = ClassifyAll("machine mein bahut dikkat hai", cat, DefaultMinScore)
	require.Len(t, got, 1)
	assert.Equal(t, "General", got[0].Category)
	assert.Equal(t, "Other", got[0].SubCategory)
}

func TestScoreRewardsWholeWords(t *testing.T) {
	assert.Equal(t, 10, Score("brake weak", []string{"brake"}))
	assert.Equal(t, 5, Score("brakes weak", []string{"brake"}))
	assert.Equal(t, 0, Score("engine", []string{"brake"}))
	// A later whole-word hit still counts double.
	assert.Equal(t, 8, Score("gears gear", []string{"gear"}))
}

func TestTieGoesToHigherPriority(t *testing.T) {
	cat := &taxonomy.Catalog{
		Version: "tie",
		Categories: []taxonomy.Category{
			{Name: "Low", Priority: 1, Keywords: []string{"pump"}},
			{Name: "High", Priority: 9, Keywords: []string{"pipe"}},
		},
	}
	require.NoError(t, cat.Prepare())
	got, ok := Classify("pump pipe", cat)
	require.True(t, ok)
	assert.Equal(t, "High", got.Category)
	assert.Equal(t, "Other", got.SubCategory)
}

func TestNothingMatches(t *testing.T) {
	cat := taxonomy.Default()
	_, ok := Classify("hmm", cat)
	assert.False(t, ok)
	assert.Empty(t, ClassifyAll("", cat, 0))
	assert.Equal(t, Complaint{Category: "General", SubCategory: "Other"}, Fallback(cat))
}
