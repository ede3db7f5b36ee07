package advisor

import (
	"testing"

	"banmaytinh/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func TestComputeThresholds(t *testing.T) {
	cases := []struct {
		n, high, mid int
	}{
		{1, 1, 1},
		{2, 2, 1},
		{3, 3, 2},
		{4, 4, 2},
		{5, 4, 2},
		{10, 8, 4},
		{15, 12, 6},
	}
	for _, c := range cases {
		th := ComputeThresholds(c.n)
		assert.Equal(t, c.high, th.HighMin, "high n=%d", c.n)
		assert.Equal(t, c.mid, th.MidMin, "mid n=%d", c.n)
		assert.Equal(t, c.n, th.SelectedCount)
	}
}

func TestSuggest_EmptyCriteria(t *testing.T) {
	products := []Candidate{{ID: 1, Name: "PC"}}
	ptags := map[int64][]string{1: {"A <> 1"}}

	_, err := Suggest(nil, products, ptags)
	assert.ErrorIs(t, err, domain.ErrEmptyCriteria)

	_, err = Suggest([]Criterion{{Topic: " ", Value: "x"}, {Topic: "A", Value: ""}}, products, ptags)
	assert.ErrorIs(t, err, domain.ErrEmptyCriteria)
}

func TestSuggest_NoProducts(t *testing.T) {
	res, err := Suggest([]Criterion{{Topic: "A", Value: "1"}}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Tiers.Tier1)
	assert.Empty(t, res.Tiers.Tier2)
	assert.Empty(t, res.Tiers.Tier3)
	assert.NotNil(t, res.Tiers.Tier1)
}

func TestSuggest_StrongMatch(t *testing.T) {
	products := []Candidate{{ID: 7, Name: "P", Price: price(25_000_000), Image: "p.jpg"}}
	ptags := map[int64][]string{7: {"Mục đích <> Gaming", "Mục đích <> Văn phòng", "Ngân sách <> Cao"}}

	res, err := Suggest([]Criterion{
		{Topic: "Mục đích", Value: "Gaming"},
		{Topic: "Ngân sách", Value: "Cao"},
	}, products, ptags)
	require.NoError(t, err)

	assert.Equal(t, Thresholds{HighMin: 2, MidMin: 1, SelectedCount: 2}, res.Thresholds)
	require.Len(t, res.Tiers.Tier1, 1)
	got := res.Tiers.Tier1[0]
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, 2, got.MatchCount)
	assert.Equal(t, 2, got.TotalSelected)
	assert.Equal(t, 1.0, got.MatchRatio)
	assert.Equal(t, "p.jpg", got.Image)
	assert.Empty(t, res.Tiers.Tier2)
}

func TestSuggest_ModerateMatch(t *testing.T) {
	products := []Candidate{{ID: 7, Name: "P"}}
	ptags := map[int64][]string{7: {"Mục đích <> Gaming", "Mục đích <> Văn phòng", "Ngân sách <> Cao"}}

	res, err := Suggest([]Criterion{
		{Topic: "Mục đích", Value: "Gaming"},
		{Topic: "Ngân sách", Value: "Cao"},
		{Topic: "Màu", Value: "Đen"},
	}, products, ptags)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Thresholds.HighMin)
	assert.Equal(t, 2, res.Thresholds.MidMin)
	assert.Empty(t, res.Tiers.Tier1)
	require.Len(t, res.Tiers.Tier2, 1)
	assert.Equal(t, 2, res.Tiers.Tier2[0].MatchCount)
}

func TestSuggest_FiveCriteriaTiering(t *testing.T) {
	criteria := []Criterion{
		{Topic: "T", Value: "1"}, {Topic: "T", Value: "2"}, {Topic: "T", Value: "3"},
		{Topic: "T", Value: "4"}, {Topic: "T", Value: "5"},
	}
	products := []Candidate{
		{ID: 1, Name: "five"}, {ID: 2, Name: "four"}, {ID: 3, Name: "three"},
		{ID: 4, Name: "two"}, {ID: 5, Name: "one"}, {ID: 6, Name: "zero"},
	}
	ptags := map[int64][]string{
		1: {"T <> 1", "T <> 2", "T <> 3", "T <> 4", "T <> 5"},
		2: {"T <> 1", "T <> 2", "T <> 3", "T <> 4"},
		3: {"T <> 1", "T <> 2", "T <> 3"},
		4: {"T <> 1", "T <> 2"},
		5: {"T <> 1", "Other <> x"},
		6: {"Other <> x"},
	}

	res, err := Suggest(criteria, products, ptags)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, ids(res.Tiers.Tier1))
	assert.Equal(t, []int64{3, 4}, ids(res.Tiers.Tier2))
	assert.Equal(t, []int64{5}, ids(res.Tiers.Tier3))
}

func TestSuggest_OrderingByMatchThenPrice(t *testing.T) {
	criteria := []Criterion{{Topic: "A", Value: "1"}, {Topic: "A", Value: "2"}, {Topic: "A", Value: "3"}, {Topic: "A", Value: "4"}, {Topic: "A", Value: "5"}}
	products := []Candidate{
		{ID: 1, Price: price(300)},
		{ID: 2, Price: price(100)},
		{ID: 3, Price: nil},
		{ID: 4, Price: price(50)},
	}
	ptags := map[int64][]string{
		1: {"A <> 1", "A <> 2", "A <> 3", "A <> 4", "A <> 5"},
		2: {"A <> 1", "A <> 2", "A <> 3", "A <> 4"},
		3: {"A <> 1", "A <> 2", "A <> 3", "A <> 4"},
		4: {"A <> 1", "A <> 2", "A <> 3", "A <> 4"},
	}

	res, err := Suggest(criteria, products, ptags)
	require.NoError(t, err)
	// 5 个匹配优先；4 个匹配按价格升序，无价格视为 0
	assert.Equal(t, []int64{1, 3, 4, 2}, ids(res.Tiers.Tier1))

	for _, tier := range [][]ScoredCandidate{res.Tiers.Tier1, res.Tiers.Tier2, res.Tiers.Tier3} {
		for i := 1; i < len(tier); i++ {
			a, b := tier[i-1], tier[i]
			ok := a.MatchCount > b.MatchCount ||
				(a.MatchCount == b.MatchCount && priceOf(a.Price) <= priceOf(b.Price))
			assert.True(t, ok, "order violated at %d", i)
		}
	}
}

func TestSuggest_DuplicateCriteriaCollapse(t *testing.T) {
	products := []Candidate{{ID: 1}}
	ptags := map[int64][]string{1: {"A <> 1"}}

	res, err := Suggest([]Criterion{
		{Topic: "A", Value: "1"},
		{Topic: " A ", Value: "1 "},
	}, products, ptags)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Thresholds.SelectedCount)
	require.Len(t, res.Tiers.Tier1, 1)
	assert.Equal(t, 1.0, res.Tiers.Tier1[0].MatchRatio)
}

func TestSuggest_EveryProductInExactlyOneTier(t *testing.T) {
	criteria := []Criterion{{Topic: "A", Value: "1"}, {Topic: "B", Value: "2"}, {Topic: "C", Value: "3"}}
	products := []Candidate{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	ptags := map[int64][]string{
		1: {"A <> 1", "B <> 2", "C <> 3"},
		2: {"A <> 1", "B<>2"},
		3: {"C <> 3"},
		4: {},
	}

	res, err := Suggest(criteria, products, ptags)
	require.NoError(t, err)

	seen := map[int64]int{}
	for _, tier := range [][]ScoredCandidate{res.Tiers.Tier1, res.Tiers.Tier2, res.Tiers.Tier3} {
		for _, c := range tier {
			assert.GreaterOrEqual(t, c.MatchCount, 1)
			seen[c.ID]++
		}
	}
	assert.Equal(t, map[int64]int{1: 1, 2: 1, 3: 1}, seen)
}

func ids(items []ScoredCandidate) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

// 库中标签名的 "<>" 两侧空格不同也能匹配
func TestSuggest_MatchesTagNamesRegardlessOfSpacing(t *testing.T) {
	products := []Candidate{{ID: 1, Name: "PC", Price: price(10_000_000)}}
	ptags := map[int64][]string{1: {"Mục đích<>Gaming", " Ngân sách <>Cao ", "Mục đích <> Gaming"}}

	res, err := Suggest([]Criterion{
		{Topic: "Mục đích", Value: "Gaming"},
		{Topic: "Ngân sách", Value: "Cao"},
	}, products, ptags)
	require.NoError(t, err)
	require.Len(t, res.Tiers.Tier1, 1)
	assert.Equal(t, 2, res.Tiers.Tier1[0].MatchCount)
}
