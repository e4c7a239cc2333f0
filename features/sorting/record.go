package sorting

import (
	"math"
	"strconv"
	"strings"

	"sozblock/features/entries"
	"sozblock/features/profiles"
)

// RatioMax is the sentinel for a ratio whose denominator is zero while the
// numerator is positive. A plain maximum keeps comparisons total where Inf
// or NaN would poison them.
const RatioMax = math.MaxFloat64

// levelLadder orders the forum's rating titles from newest member to most
// senior. Unrecognized titles rank lowest.
var levelLadder = []string{"çaylak", "yazar", "büyücü", "anarşist"}

// AuthorMetrics is the profile-derived half of a Record. All derived values
// are computed here, once, at extraction time; comparators only read.
type AuthorMetrics struct {
	AgeYears        int     `json:"age_years"`
	Level           string  `json:"level"`
	LevelIndex      int     `json:"level_index"`
	LevelPoints     int     `json:"level_points"`
	EntryCount      int     `json:"entry_count"`
	Followers       int     `json:"followers"`
	Following       int     `json:"following"`
	ActivityRatio   float64 `json:"activity_ratio"`
	FollowingRatio  float64 `json:"following_ratio"`
	EngagementRatio float64 `json:"engagement_ratio"`
}

// Record is the pure, comparator-facing view of one listing entry. Metrics
// is nil when the author's profile is not in the cache; comparators treat
// that as all zeroes.
type Record struct {
	Entry         *entries.Entry `json:"entry"`
	ID            int64          `json:"id"`
	FavoriteCount int            `json:"favorite_count"`
	ContentLength int            `json:"content_length"`
	Author        string         `json:"author"`
	Metrics       *AuthorMetrics `json:"metrics,omitempty"`
}

// MetricsOf derives AuthorMetrics from a cached profile.
func MetricsOf(p *profiles.Profile) *AuthorMetrics {
	return &AuthorMetrics{
		AgeYears:        p.AgeYears,
		Level:           p.Level,
		LevelIndex:      LevelIndex(p.Level),
		LevelPoints:     p.RatingPoints,
		EntryCount:      p.EntryCount,
		Followers:       p.Followers,
		Following:       p.Following,
		ActivityRatio:   activityRatio(p.EntryCount, p.AgeYears),
		FollowingRatio:  ratio(p.Following, p.Followers),
		EngagementRatio: ratio(p.Followers, p.Following),
	}
}

// LevelIndex is the position of a rating title on the ladder, 0 for
// anything unrecognized.
func LevelIndex(level string) int {
	needle := strings.ToLower(strings.TrimSpace(level))
	for i, name := range levelLadder {
		if name == needle {
			return i
		}
	}
	return 0
}

// metricsOrZero lets comparators read absent metrics as zero values.
func metricsOrZero(r *Record) AuthorMetrics {
	if r.Metrics != nil {
		return *r.Metrics
	}
	return AuthorMetrics{}
}

func ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		if numerator > 0 {
			return RatioMax
		}
		return 0
	}
	return float64(numerator) / float64(denominator)
}

func activityRatio(entryCount, ageYears int) float64 {
	days := ageYears * 365
	if days == 0 {
		return 0
	}
	return float64(entryCount) / float64(days)
}

func parseEntryID(id string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
