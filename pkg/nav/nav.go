// Package nav computes which navigation entries the top bar shows for a
// given verification status.
package nav

// Rule decides whether an entry is visible.
type Rule int

const (
	// Always entries are shown regardless of verification.
	Always Rule = iota
	// VerifiedOnly entries are shown only to verified users.
	VerifiedOnly
)

// String returns the rule name.
func (r Rule) String() string {
	switch r {
	case Always:
		return "always"
	case VerifiedOnly:
		return "verified"
	default:
		return "unknown"
	}
}

// Visible reports whether an entry with this rule is shown.
func (r Rule) Visible(verified bool) bool {
	switch r {
	case Always:
		return true
	case VerifiedOnly:
		return verified
	default:
		return false
	}
}

// Entry is a single navigation link.
type Entry struct {
	Label  string `json:"label"`
	Target string `json:"target"`
	Rule   Rule   `json:"-"`
}

// Entries is the fixed, ordered set of navigation links.
var Entries = []Entry{
	{Label: "📂 Job Listings", Target: JobListing, Rule: Always},
	{Label: "🎮 My Work", Target: MyWork, Rule: Always},
	{Label: "📝 Post Job", Target: PostJob, Rule: VerifiedOnly},
	{Label: "🛠 Work Management", Target: WorkManagement, Rule: VerifiedOnly},
}

// Badge is the element shown after the entries: a call to action when
// the user is not verified, a status marker when they are.
type Badge struct {
	Label string `json:"label"`
	// Target is empty for the verified badge, which is not a link.
	Target   string `json:"target,omitempty"`
	Verified bool   `json:"verified"`
}

// IsLink reports whether the badge navigates somewhere.
func (b Badge) IsLink() bool {
	return b.Target != ""
}

var (
	verifyLink    = Badge{Label: "🛡️ Verify Now", Target: Verification}
	verifiedBadge = Badge{Label: "🟢 Verified", Verified: true}
)

// Bar is the computed navigation for one mount.
type Bar struct {
	Entries []Entry `json:"entries"`
	Badge   Badge   `json:"badge"`
}

// Build returns the visible entries in declaration order followed by the
// verify link or the verified badge. Exactly one of the two is present.
func Build(verified bool) Bar {
	entries := make([]Entry, 0, len(Entries))
	for _, e := range Entries {
		if e.Rule.Visible(verified) {
			entries = append(entries, e)
		}
	}

	badge := verifyLink
	if verified {
		badge = verifiedBadge
	}

	return Bar{Entries: entries, Badge: badge}
}
