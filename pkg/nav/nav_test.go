package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func targets(bar Bar) []string {
	out := make([]string, 0, len(bar.Entries))
	for _, e := range bar.Entries {
		out = append(out, e.Target)
	}
	return out
}

func TestBuildUnverified(t *testing.T) {
	bar := Build(false)

	assert.Equal(t, []string{JobListing, MyWork}, targets(bar))
	assert.False(t, bar.Badge.Verified)
	assert.True(t, bar.Badge.IsLink())
	assert.Equal(t, Verification, bar.Badge.Target)
}

func TestBuildVerified(t *testing.T) {
	bar := Build(true)

	assert.Equal(t, []string{JobListing, MyWork, PostJob, WorkManagement}, targets(bar))
	assert.True(t, bar.Badge.Verified)
	assert.False(t, bar.Badge.IsLink())
}

func TestBuildGating(t *testing.T) {
	for _, verified := range []bool{false, true} {
		bar := Build(verified)
		got := map[string]bool{}
		for _, e := range bar.Entries {
			got[e.Target] = true
		}

		for _, e := range Entries {
			switch e.Rule {
			case Always:
				assert.True(t, got[e.Target], "%s should always be visible", e.Target)
			case VerifiedOnly:
				assert.Equal(t, verified, got[e.Target], "%s visibility", e.Target)
			}
		}
		// verify link and verified badge are mutually exclusive
		assert.NotEqual(t, bar.Badge.Verified, bar.Badge.IsLink())
	}
}

func TestBuildDoesNotAliasEntries(t *testing.T) {
	bar := Build(true)
	require.NotEmpty(t, bar.Entries)
	bar.Entries[0].Label = "changed"

	assert.NotEqual(t, "changed", Entries[0].Label)
}

func TestRuleString(t *testing.T) {
	assert.Equal(t, "always", Always.String())
	assert.Equal(t, "verified", VerifiedOnly.String())
	assert.Equal(t, "unknown", Rule(9).String())
	assert.False(t, Rule(9).Visible(true))
}

func TestMenuStateToggle(t *testing.T) {
	var m MenuState
	assert.False(t, m.Open())
	assert.True(t, m.Toggle())
	assert.True(t, m.Open())
	assert.False(t, m.Toggle())
}
