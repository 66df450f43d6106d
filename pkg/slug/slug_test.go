package slug

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"First Name", "first-name"},
		{"  Purchase   Document  ", "purchase-document"},
		{"First time attending Pycon?", "first-time-attending-pycon"},
		{"Café Crème", "cafe-creme"},
		{"Déjà-vu__2024", "deja-vu-2024"},
		{"???", Fallback},
		{"", Fallback},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMake_TruncatesToMaxLength(t *testing.T) {
	got := Make(strings.Repeat("a", 300))
	assert.Len(t, got, MaxLength)
}

// store accumulates every slug it hands out
type store map[string]bool

func (s store) exists(_ context.Context, slug string) (bool, error) {
	return s[slug], nil
}

func TestUnique_AccumulatesDistinctSlugs(t *testing.T) {
	ctx := context.Background()
	taken := store{}

	var got []string
	for i := 0; i < 4; i++ {
		s, err := Unique(ctx, "Email", taken.exists)
		require.NoError(t, err)
		taken[s] = true
		got = append(got, s)
	}
	assert.Equal(t, []string{"email", "email-1", "email-2", "email-3"}, got)
}

func TestUnique_LongNamesStayWithinLimit(t *testing.T) {
	ctx := context.Background()
	taken := store{}
	name := strings.Repeat("x", 400)

	seen := map[string]bool{}
	for i := 0; i < 12; i++ {
		s, err := Unique(ctx, name, taken.exists)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(s), MaxLength)
		assert.False(t, seen[s], "duplicate slug %s", s)
		seen[s] = true
		taken[s] = true
	}
	assert.True(t, seen[strings.Repeat("x", MaxLength-3)+"-10"])
}

func TestTruncate_CutOnSeparatorFillsLimit(t *testing.T) {
	a := func(n int) string { return strings.Repeat("a", n) }
	tests := []struct {
		name   string
		text   string
		suffix bool
		want   string
	}{
		{"make cut on separator", a(254) + " bb", false, a(254) + "b"},
		{"make cut inside word", a(250) + " bbbbbbbb", false, a(250) + "-bbbb"},
		{"suffix cut on separator", a(252) + " bbb", true, a(252) + "b-1"},
		{"suffix cut inside word", a(251) + " bbbb", true, a(251) + "-b-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken := store{}
			if tt.suffix {
				taken[Make(tt.text)] = true
			}
			got, err := Unique(context.Background(), tt.text, taken.exists)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, MaxLength)
			assert.NotContains(t, got, "--")
		})
	}
}

func TestUnique_PropagatesLookupError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Unique(context.Background(), "Email", func(context.Context, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}
