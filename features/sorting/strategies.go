package sorting

import (
	"cmp"
	"strings"
)

// DefaultRegistry builds the complete strategy catalogue. Every comparison
// is descending-first; the engine negates for ascending requests.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range []*Strategy{
		{
			Name:             "date",
			Icon:             "🕑",
			Tooltip:          "tarihe göre (en yeni önce)",
			DefaultDirection: Descending,
			Compare: func(a, b *Record) int {
				return cmp.Compare(b.ID, a.ID)
			},
		},
		{
			Name:             "favorites",
			Icon:             "⭐",
			Tooltip:          "favori sayısına göre",
			DefaultDirection: Descending,
			Compare: func(a, b *Record) int {
				return cmp.Compare(b.FavoriteCount, a.FavoriteCount)
			},
		},
		{
			Name:             "length",
			Icon:             "📏",
			Tooltip:          "içerik uzunluğuna göre",
			DefaultDirection: Descending,
			Compare: func(a, b *Record) int {
				return cmp.Compare(b.ContentLength, a.ContentLength)
			},
		},
		{
			Name:             "age",
			Icon:             "🎂",
			Tooltip:          "hesap yaşına göre (en eski önce)",
			DefaultDirection: Descending,
			Compare: func(a, b *Record) int {
				am, bm := metricsOrZero(a), metricsOrZero(b)
				if c := cmp.Compare(bm.AgeYears, am.AgeYears); c != 0 {
					return c
				}
				// Same-age accounts order by nick, not page position.
				return strings.Compare(a.Author, b.Author)
			},
		},
		{
			Name:             "level",
			Icon:             "🏆",
			Tooltip:          "yazar seviyesine göre",
			DefaultDirection: Descending,
			Compare: func(a, b *Record) int {
				am, bm := metricsOrZero(a), metricsOrZero(b)
				if c := cmp.Compare(bm.LevelIndex, am.LevelIndex); c != 0 {
					return c
				}
				return cmp.Compare(bm.LevelPoints, am.LevelPoints)
			},
		},
		{
			Name:             "entries",
			Icon:             "📚",
			Tooltip:          "toplam giriş sayısına göre",
			DefaultDirection: Descending,
			Compare: func(a, b *Record) int {
				return cmp.Compare(metricsOrZero(b).EntryCount, metricsOrZero(a).EntryCount)
			},
		},
		{
			Name:             "followers",
			Icon:             "👥",
			Tooltip:          "takipçi sayısına göre",
			DefaultDirection: Descending,
			Compare: func(a, b *Record) int {
				return cmp.Compare(metricsOrZero(b).Followers, metricsOrZero(a).Followers)
			},
		},
		{
			Name:             "following-ratio",
			Icon:             "➗",
			Tooltip:          "takip oranına göre",
			DefaultDirection: Descending,
			Compare: func(a, b *Record) int {
				return cmp.Compare(metricsOrZero(b).FollowingRatio, metricsOrZero(a).FollowingRatio)
			},
		},
		{
			Name:             "activity",
			Icon:             "⚡",
			Tooltip:          "aktiflik oranına göre",
			DefaultDirection: Descending,
			Compare: func(a, b *Record) int {
				return cmp.Compare(metricsOrZero(b).ActivityRatio, metricsOrZero(a).ActivityRatio)
			},
		},
		{
			Name:             "engagement",
			Icon:             "🧲",
			Tooltip:          "etkileşim oranına göre",
			DefaultDirection: Descending,
			Compare: func(a, b *Record) int {
				return cmp.Compare(metricsOrZero(b).EngagementRatio, metricsOrZero(a).EngagementRatio)
			},
		},
	} {
		if err := r.Register(s); err != nil {
			// The catalogue is static; a bad entry is a programming error.
			panic(err)
		}
	}
	return r
}
